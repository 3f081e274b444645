package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyLink(&cfg.Link); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyHistory(&cfg.History); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	return nil
}

func verifyLink(cfg *LinkSection) error {
	if cfg.Addr == "" {
		return errors.New("link.addr is required")
	}
	if cfg.MaxFrame < 16 {
		return errors.New("link.max_frame must be at least 16 bytes")
	}
	if cfg.MaxFrame > 65535 {
		return errors.New("link.max_frame cannot exceed 65535 bytes")
	}
	if cfg.RateLimit < 0 {
		return errors.New("link.rate_limit cannot be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case "badger":
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger engine")
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return errors.New("cannot create data directory: " + err.Error())
		}
		if cfg.GCThreshold < 0 || cfg.GCThreshold > 1 {
			return errors.New("storage.gc_threshold must be between 0.0 and 1.0")
		}
	case "memory":
		// No further requirements. Records are lost on restart.
	default:
		return fmt.Errorf("storage.engine must be \"badger\" or \"memory\", got %q", cfg.Engine)
	}
	return nil
}

func verifyHistory(cfg *HistorySection) error {
	if cfg.Capacity < 1 {
		return errors.New("history.capacity must be at least 1")
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.EncryptionKey == "" {
		return nil
	}
	key, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return errors.New("security.encryption_key must be hex-encoded")
	}
	if len(key) != 32 {
		return errors.New("security.encryption_key must decode to 32 bytes")
	}
	switch cfg.Cipher {
	case "", "aes-gcm", "chacha20-poly1305":
		return nil
	default:
		return fmt.Errorf("security.cipher must be \"aes-gcm\" or \"chacha20-poly1305\", got %q", cfg.Cipher)
	}
}
