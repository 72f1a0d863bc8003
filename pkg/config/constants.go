package config

const (
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvAppPort          = "STOREFRONT_APP_PORT"
	EnvAuthorityBaseURL = "STOREFRONT_AUTHORITY_BASE_URL"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
)
