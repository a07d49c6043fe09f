package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backup = `#config-version=FGT60F-7.2.4-FW-build1396-230131:opmode=0:vdom=1:user=admin
config vdom
edit A
next
edit B
next
end
config vdom
edit A
config firewall service custom
    edit "HTTP"
        set protocol TCP/UDP/SCTP
        set port-range 80
    next
    edit "HTTPS"
        set protocol TCP/UDP/SCTP
        set port-range 443
    next
end
end
config vdom
edit B
config firewall service custom
    edit "DNS"
        set protocol TCP/UDP/SCTP
        set port-range 53
    next
end
end
`

// resetFlags restores every flag to its default between runs of rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns everything written to stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	appConfig = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExport_CSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	out := filepath.Join(dir, "services.csv")

	stdout, _, err := execute(t, "-i", in, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want := "context,object-name,protocol,port-range,\n" +
		"A,HTTP,TCP/UDP/SCTP,80,\n" +
		"A,HTTPS,TCP/UDP/SCTP,443,\n" +
		"B,DNS,TCP/UDP/SCTP,53,\n"
	assert.Equal(t, want, string(got))

	assert.Contains(t, stdout, "Please wait! Working on "+in)
	assert.Contains(t, stdout, "Results: 3 services exported to "+out)
}

func TestExport_CSVUnsetAttributes(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", `config firewall service custom
    edit "ALL"
        set category "General"
        set protocol IP
    next
    edit "DNS"
        set udp-portrange 53
        set comment "Domain   lookups"
    next
end
`)
	out := filepath.Join(dir, "services.csv")

	_, _, err := execute(t, "-i", in, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want := "context,object-name,category,protocol,udp-portrange,comment,\n" +
		"root,ALL,\"General\",IP, , ,\n" +
		"root,DNS, , ,53,\"Domain   lookups\",\n"
	assert.Equal(t, want, string(got))
}

func TestExport_RFC4180UnsetAttributesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", "config firewall service custom\n    edit \"A\"\n        set protocol IP\n    next\n    edit \"B\"\n        set tcp-portrange 22\n    next\nend\n")
	out := filepath.Join(dir, "services.csv")

	_, _, err := execute(t, "-i", in, "-o", out, "--format", "rfc4180")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "context,object-name,protocol,tcp-portrange\nroot,A,IP,\nroot,B,,22\n", string(got))
}

func TestExport_LongFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	out := filepath.Join(dir, "services.yaml")

	_, _, err := execute(t, "--ifile", in, "--ofile", out, "--format", "yaml")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "context: A\nobject-name: HTTP\n"), string(got))
}

func TestExport_NoServices(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "empty.conf", "config system global\n    set hostname fw\nend\n")
	out := filepath.Join(dir, "services.csv")

	stdout, _, err := execute(t, "-i", in, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "context,object-name,\n", string(got))
	assert.Contains(t, stdout, "There is no service in the input file "+in)
}

func TestExport_MissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.conf")
	out := filepath.Join(dir, "services.csv")

	stdout, stderr, err := execute(t, "-i", in, "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), in)
	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stdout+stderr, "Usage:")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output must not be created when the input is missing")
}

func TestExport_NoInputFlag(t *testing.T) {
	_, _, err := execute(t, "-o", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-i/--ifile")
}

func TestExport_OutputOpenFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	out := filepath.Join(dir, "no-such-dir", "services.csv")

	stdout, stderr, err := execute(t, "-i", in, "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output")
	assert.Contains(t, err.Error(), out)
	assert.Contains(t, stdout+stderr, "Usage:")
}

func TestExport_UnknownFlag(t *testing.T) {
	stdout, stderr, err := execute(t, "--bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, stdout+stderr, "Usage:")
}

func TestHelp(t *testing.T) {
	stdout, _, err := execute(t, "-h")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "--ifile")
	assert.Contains(t, stdout, "--ofile")
	assert.Contains(t, stdout, "fgt-export -i backup-config.conf -o results.csv")
}

func TestExport_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	cfg := writeFile(t, dir, "config.yml", "output:\n  delimiter: \";\"\n  trailing_delimiter: false\n")
	out := filepath.Join(dir, "services.csv")

	_, _, err := execute(t, "--config", cfg, "-i", in, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(got)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "context;object-name;protocol;port-range", lines[0])
	assert.Equal(t, "B;DNS;TCP/UDP/SCTP;53", lines[3])
}

func TestExport_FlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	cfg := writeFile(t, dir, "config.yml", "output:\n  format: yaml\n")
	out := filepath.Join(dir, "services.csv")

	_, _, err := execute(t, "--config", cfg, "--format", "rfc4180", "-i", in, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "context,object-name,protocol,port-range\n"), string(got))
}

func TestExport_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	prom := filepath.Join(dir, "fgt_export.prom")

	_, _, err := execute(t, "-i", in, "-o", filepath.Join(dir, "services.csv"), "--metrics-file", prom)
	require.NoError(t, err)

	got, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(got), "fgt_export_objects_total")
	assert.Contains(t, string(got), `context="A"`)
}

func TestExport_Idempotent(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fw01.conf", backup)
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	_, _, err := execute(t, "-i", in, "-o", first)
	require.NoError(t, err)
	_, _, err = execute(t, "-i", in, "-o", second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVdoms(t *testing.T) {
	in := writeFile(t, t.TempDir(), "fw01.conf", backup)

	stdout, _, err := execute(t, "vdoms", "-i", in)
	require.NoError(t, err)
	assert.Equal(t, "root\nA\nB\n", stdout)

	stdout, _, err = execute(t, "vdoms", "-i", in, "--yaml")
	require.NoError(t, err)
	assert.Equal(t, "vdoms:\n  - root\n  - A\n  - B\n", stdout)
}

func TestColumns(t *testing.T) {
	in := writeFile(t, t.TempDir(), "fw01.conf", backup)

	stdout, _, err := execute(t, "columns", "-i", in)
	require.NoError(t, err)
	assert.Equal(t, "context\nobject-name\nprotocol\nport-range\n", stdout)
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yml", "blocks:\n  target: config firewall service custom\n")
	bad := writeFile(t, dir, "bad.yml", "output:\n  format: xlsx\n")

	stdout, _, err := execute(t, "validate", "config", "--config", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config is valid")

	_, _, err = execute(t, "validate", "config", "--config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	_, _, err = execute(t, "validate", "config")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "fgt-export version "))
}
