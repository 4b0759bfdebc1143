package secrets

// Config carries the base64-encoded master key.
type Config struct {
	MasterKey string `env:"IDVAULT_MASTER_KEY,required"`
}

// NewKeyringFromConfig decodes cfg.MasterKey and builds a Keyring from it.
func NewKeyringFromConfig(cfg Config) (*Keyring, error) {
	if cfg.MasterKey == "" {
		return nil, ErrKeyNotSet
	}
	master, err := ParseKey(cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	return NewKeyring(master)
}
