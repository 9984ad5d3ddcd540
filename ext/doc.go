// Package ext defines the extension system for quotewatch.
//
// Extensions are notified of dispatch lifecycle events and can react to
// them, for example by recording metrics or writing audit logs. Each hook is
// a separate interface so extensions opt in only to the events they care
// about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	func (e *MyExtension) OnRequestDropped(ctx context.Context, info request.Info, reason string) error {
//	    log.Printf("dropped %s: %s", info, reason)
//	    return nil
//	}
//
// # Hooks
//
//   - [RequestExecuted]: an execution attempt finished with an outcome
//   - [RequestRequeued]: an item went back to the tail of its queue
//   - [RequestDropped]: an item was discarded
//   - [DispatcherPaused]: a dispatcher backed off after a rate-limit signal
//   - [CronFired]: a recurring action ran
//   - [Shutdown]: the daemon is shutting down
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged and
// never interrupt dispatch.
package ext
