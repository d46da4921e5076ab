package config

import "github.com/go-ini/ini"

// credParams abstracts credentials loaded from an ini defaults file.
// Will provide nothing when receiver is nil or a key is not defined.
type credParams struct {
	host, database, user string
	password             *string
	port                 int
}

// newCredParams attempts to load a credParams struct from a path to an ini file.
func newCredParams(path string) (*credParams, error) {
	params := &credParams{}

	if path == "" {
		return params, nil
	}

	creds, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	if creds.HasSection("client") {
		clientSection := creds.Section("client")
		params.host = clientSection.Key("host").String()
		params.database = clientSection.Key("database").String()
		params.user = clientSection.Key("user").String()
		params.port = clientSection.Key("port").MustInt()

		if clientSection.HasKey("password") {
			pw := clientSection.Key("password").String()
			params.password = &pw
		}
	}

	return params, nil
}

// ApplyDefaultsFile overlays credentials from an ini defaults file
// onto the config. The config file wins for every field except the
// password, where the defaults file wins so operators can rotate
// passwords without editing configs.
func (c *Config) ApplyDefaultsFile(path string) error {
	params, err := newCredParams(path)
	if err != nil {
		return err
	}
	if c.Database.Host == "" {
		c.Database.Host = params.host
	}
	if c.Database.Port == 0 {
		c.Database.Port = params.port
	}
	if c.Database.Service == "" {
		c.Database.Service = params.database
	}
	if c.Database.Username == "" {
		c.Database.Username = params.user
	}
	if params.password != nil {
		c.Database.Password = *params.password
	}
	return nil
}
