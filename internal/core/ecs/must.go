package ecs

// Must panics if err is non-nil. It is meant for package-level module
// definitions, where a failure is a programming error.
//
//	var Move = ecs.Must(ecs.DefineSystem(Module, OnUpdate, ecs.With(Position), step, "move"))
func Must[H any](h H, err error) H {
	if err != nil {
		panic(err)
	}
	return h
}
