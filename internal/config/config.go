package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DATABASE_"`
	Auth        Auth     `envPrefix:"AUTH_"`
	Redis       Redis    `envPrefix:"REDIS_"`
	Jobs        Jobs     `envPrefix:"JOBS_"`

	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql
	URL    string `env:"URL" envDefault:"subscriptions.db"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
	// user ids that get the admin role at start-up
	BootstrapAdmins []string `env:"BOOTSTRAP_ADMINS" envSeparator:","`
}

type Redis struct {
	// empty disables the distributed purchase lock
	URL string `env:"URL"`
}

type Jobs struct {
	ExpiryEnabled bool   `env:"EXPIRY_ENABLED" envDefault:"true"`
	ExpirySpec    string `env:"EXPIRY_SPEC" envDefault:"@every 1h"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

// Enabled reports whether enough credentials are present to reach the gateway.
func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
