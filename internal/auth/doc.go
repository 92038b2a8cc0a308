// Package auth protects the backend API.
//
// The backend API is what a remote importer (backend.Remote) talks to, so it
// only knows one kind of caller: a service presenting the shared bearer
// token from API_TOKEN. When API_TOKEN is empty the backend API is not
// mounted at all.
//
// # Configuration
//
//	API_TOKEN=<random secret>  # enables /api/members, /api/periods, ...
//
// # Usage
//
//	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
//	defer limiter.Stop()
//	api := router.Group("/api", auth.NewMiddleware(cfg.API.Token, limiter, logger).Handler())
//
// Callers that keep presenting a wrong token are locked out for a while and
// get 429 Too Many Requests, which backend.Remote reports as ErrRateLimited.
package auth
