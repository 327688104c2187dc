// Package ws realizes the client-facing message protocol (§6.2) over
// gorilla/websocket: one goroutine per connection reads JSON frames,
// validates them through internal/validate, and dispatches to the
// Session Registry; replies and server-push events are written back
// through a per-client buffered channel drained by one writer goroutine,
// so a slow client's network write never blocks the shared event-demux
// path (§5).
//
// Message types (client → core):
//
//	browser:connect, browser:disconnect, browser:navigate, browser:goBack,
//	browser:goForward, browser:reload, browser:switchPage, browser:newPage,
//	browser:closePage, browser:clickAt, browser:click (API only),
//	browser:fill (API only), browser:getSnapshot (API only),
//	browser:getScreenshot (API only) — all request-reply.
//
//	browser:mouseMove, browser:scroll, browser:keyDown, browser:keyUp,
//	browser:imeSetComposition, browser:imeCommitComposition,
//	browser:insertText — fire-and-forget, viewer only, no reply.
//
// Message types (core → viewer, server push):
//
//	browser:frame, browser:urlChanged, browser:connected, browser:pageCreated,
//	browser:pageDestroyed, browser:pageInfoChanged, browser:pageSwitched,
//	browser:pageList, browser:error.
//
// Example usage:
//
//	handler := ws.NewHandler(reg, logger, metrics)
//	router.GET("/ws", handler.HandleConnection)
package ws
