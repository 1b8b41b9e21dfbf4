// Package profile provides optional runtime profiling for gsconf.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
//
// # Modes
//
// With the tag, [Modes] lists allocs, block, clock, cpu, goroutine, heap,
// mem, mutex, thread and trace. Profiles are written to [Profiler.Path]
// under the name of the mode, such as cpu.pprof:
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/profiles"))
//	defer p.Start().Stop()
//
// Analyze the output with go tool pprof:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// The tagged build also imports [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux].
package profile
