package a

import "context"

type Store struct{}

func good(ctx context.Context, id string) {
	_ = ctx
	_ = id
}

func noContext(id string) {
	_ = id
}

func bad(id string, ctx context.Context) { // want "context.Context should be the first parameter of bad"
	_ = ctx
	_ = id
}

func (s *Store) badMethod(id, name string, ctx context.Context) { // want "context.Context should be the first parameter of badMethod"
	_ = ctx
	_ = id
	_ = name
}
