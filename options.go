package conl

import "fmt"

// An Option configures marshaling or unmarshaling.
type Option func(*options) error

type options struct {
	maxDepth int
}

func newOptions(opts []Option) (*options, error) {
	o := &options{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MaxDepth returns an Option that bounds the nesting depth accepted by the
// parser and the recursion depth of value mapping, guarding against stack
// exhaustion on hostile input.
//
// The depth n must be a positive integer. The default is 1000.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("conl: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}
