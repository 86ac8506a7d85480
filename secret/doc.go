// Package secret resolves credentials referenced from SDK configuration.
//
// Configuration values such as the namespace shared secret or the Redis
// password may carry either environment references or provider references:
//
//	auth_secret: ${CLOUDOBJECTS_SHARED_SECRET}
//	auth_secret: secretref:file:shared-secret
//	auth_secret: secretref:env:CO_SECRET
//
// ExpandEnvStrict expands ${VAR} and fails on unset variables. A value of
// the form secretref:<provider>:<ref> is resolved through a Provider; the
// same reference embedded in a longer value is replaced inline. The env and
// file providers are registered in DefaultRegistry.
package secret
