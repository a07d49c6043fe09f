package parser

import (
	"io"
	"slices"

	"go.uber.org/zap"
)

// DiscoverContexts returns the vdom names declared in the first partition
// block, in order of appearance. The default context always comes first,
// even when the file has no partition block at all.
func DiscoverContexts(r io.Reader, opts Options) ([]string, error) {
	contexts := []string{opts.defaultContext()}
	state := searching

	_, err := scanEvents(r, func(ev Event) error {
		switch state {
		case searching:
			if ev.Kind == BlockEnter && sameHeader(ev.Header, opts.PartitionHeader) {
				state = inBlock
			}
		case inBlock:
			switch ev.Kind {
			case BlockExit:
				// Only the first partition block lists vdoms.
				return errStopScan
			case ObjectEnter:
				if !slices.Contains(contexts, ev.Name) {
					contexts = append(contexts, ev.Name)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.logger().Debug("Contexts discovered", zap.Strings("contexts", contexts))
	return contexts, nil
}
