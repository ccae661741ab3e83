// Package auth provides the session middleware of the JSON API.
//
// The middleware reads the session cookie, rejects requests without a valid
// session with 401 and otherwise stores the user ID in fiber.Locals under
// auth.LocalsUserID. The same ID becomes the actor of administrative changes
// made through the request context.
//
// Usage:
//
//	app.Use(handler.APIPath, authmiddleware.New(login.Path))
package auth
