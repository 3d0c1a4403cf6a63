// Package api provides the CRM platform REST API.
//
//	@title						CRM Platform API
//	@version					1.0
//	@description				Multi-tenant CRM platform API
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package api
