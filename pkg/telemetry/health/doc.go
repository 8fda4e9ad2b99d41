// Package health serves the liveness, readiness and version endpoints.
//
// Liveness (/health) always answers 200 while the process runs. Readiness
// (/ready) runs the registered checks, typically a ping of the call store,
// and answers 503 when any of them fails:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", store.Ping)
//	health.Register(mux, checker, version, commit, buildTime)
//
// Routes are registered with a "GET " pattern, so HEAD is served too and
// other methods receive 405 from the mux.
package health
