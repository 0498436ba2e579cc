package domain

type Config struct {
	PublicDomain    string `yaml:"publicDomain"`
	Namespace       string `yaml:"namespace"`
	ChallengeSecret string `yaml:"challengeSecret"`
	CookiePrefix    string `yaml:"cookiePrefix"`
	AuthServer      string `yaml:"authServer"`
}
