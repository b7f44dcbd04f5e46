// Package api provides the REST API for querying indexed shouts
// @title Shout Indexer API
// @version 1.0
// @description REST API for querying burn-to-broadcast events indexed from the Void contract
// @contact.name API Support
// @contact.url https://github.com/earthshout/shout-indexer
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api
