// Package admin is the HTTP admin API that mb start runs.
//
// It keeps the current imposters in memory and serves them over the
// imposters resource:
//
//	GET    /imposters[?replayable=true][&removeProxies=true]
//	PUT    /imposters   replace every imposter
//	POST   /imposters   add one imposter
//	DELETE /imposters   remove every imposter
//
// plus GET /, GET /health and GET /config. Imposters are stored as generic
// JSON values; the admin API does not interpret their protocol fields.
//
// Access is limited by the localOnly and ipWhitelist options, and imposters
// that use injection are rejected unless allowInjection is set.
package admin
