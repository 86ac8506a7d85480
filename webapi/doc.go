// Package webapi builds preconfigured HTTP clients for web APIs described
// as wa:HTTPEndpoint objects on CloudObjects.
//
// A Factory resolves the API object, reads its base URL and its supported
// authentication mechanism, and pulls credentials either from fixed values
// on the API object or from properties of the consuming namespace. The
// consuming namespace defaults to the retriever's authenticating
// namespace.
//
// Supported mechanisms:
//
//   - wa:APIKeyAuthentication, as header or query parameter
//   - oauth2:FixedBearerTokenAuthentication
//   - wa:HTTPBasicAuthentication
//   - wa:SharedSecretAuthenticationViaHTTPBasic
package webapi
