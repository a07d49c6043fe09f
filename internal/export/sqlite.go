package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteWriter stores rows in a table with one TEXT column per schema column.
// The table is recreated on every run and filled in a single transaction.
type SQLiteWriter struct {
	db      *sql.DB
	tx      *sql.Tx
	stmt    *sql.Stmt
	table   string
	columns []string
}

// NewSQLiteWriter opens (or creates) the database at path.
func NewSQLiteWriter(path, table string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating output %s: %w", path, err)
	}

	return &SQLiteWriter{db: db, table: table}, nil
}

// WriteHeader recreates the table and starts the insert transaction.
func (s *SQLiteWriter) WriteHeader(columns []string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		s.tx = tx
	}()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(s.table)); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(s.table), strings.Join(defs, ", "))
	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	s.columns = append([]string(nil), columns...)
	s.stmt, err = prepareInsert(tx, s.table, s.columns)
	return err
}

// AddColumn widens the table for an attribute found after the header.
func (s *SQLiteWriter) AddColumn(name string) error {
	if s.tx == nil {
		return fmt.Errorf("header not written")
	}
	if err := s.stmt.Close(); err != nil {
		return err
	}

	// Rows inserted before the widening read back as blank cells.
	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT NOT NULL DEFAULT ''", quoteIdent(s.table), quoteIdent(name))
	_, err := s.tx.Exec(alter)
	if err != nil {
		return fmt.Errorf("adding column: %w", err)
	}

	s.columns = append(s.columns, name)
	s.stmt, err = prepareInsert(s.tx, s.table, s.columns)
	return err
}

// WriteRow inserts one object. Missing trailing cells are stored as empty strings.
func (s *SQLiteWriter) WriteRow(row []string) error {
	if s.tx == nil {
		return fmt.Errorf("header not written")
	}

	args := make([]any, len(s.columns))
	for i := range args {
		if i < len(row) {
			args[i] = row[i]
		} else {
			args[i] = ""
		}
	}

	if _, err := s.stmt.Exec(args...); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	return nil
}

// Close commits the transaction and closes the database.
func (s *SQLiteWriter) Close() error {
	var err error
	if s.tx != nil {
		if s.stmt != nil {
			s.stmt.Close()
		}
		if cerr := s.tx.Commit(); cerr != nil {
			err = fmt.Errorf("committing: %w", cerr)
		}
		s.tx = nil
	}

	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func prepareInsert(tx *sql.Tx, table string, columns []string) (*sql.Stmt, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), placeholders)

	stmt, err := tx.Prepare(insert)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	return stmt, nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
