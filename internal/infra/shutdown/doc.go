// Package shutdown coordinates graceful process termination.
//
// Hooks registered with OnShutdown run in reverse order after SIGINT,
// SIGTERM, Trigger, or the end of the context passed to Wait:
//
//	h := shutdown.NewHandler(10*time.Second, log)
//	h.OnShutdown("store", func(context.Context) error { return store.Close() })
//	h.OnShutdown("line", lineServer.Shutdown)
//	err := h.Wait(ctx)
package shutdown
