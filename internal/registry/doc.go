// Package registry implements the Session Registry (§4.4): the
// process-wide map from browser token to Session and from socket to the
// client attached through it. The Registry is the sole owner of every
// Session and Client value; callers resolve both only through a socket
// id, never holding a live reference across a detach.
package registry
