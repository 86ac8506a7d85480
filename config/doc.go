// Package config holds the SDK options and loads them from defaults, a YAML
// file and CLOUDOBJECTS_* environment variables, later sources winning.
//
// Secret-bearing values (auth_secret, redis.password) are resolved through
// the secret package after loading, so they may be written as ${VAR} or
// secretref:<provider>:<ref>.
//
//	cfg, err := config.Load(ctx, "cloudobjects.yaml")
//	if err != nil {
//	    return err
//	}
//	r, err := retriever.New(cfg)
package config
