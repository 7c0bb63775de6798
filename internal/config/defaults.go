package config

import "time"

// Default values for optional configuration fields.
const (
	// DefaultApplicationName is registered with QuickBooks on first run;
	// changing it makes QuickBooks treat the service as a new application
	// needing fresh operator approval.
	DefaultApplicationName = "QuickBooks Sync Service"
	DefaultCompanyFile     = "AUTO"
	DefaultCallTimeout     = 60 * time.Second

	DefaultDeliveryTimeout = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 1 * time.Second

	DefaultTimestampFormat = "02-01-2006:15:04"
)

func (c *SyncConfig) applyDefaults() {
	if c.QuickBooks.ApplicationName == "" {
		c.QuickBooks.ApplicationName = DefaultApplicationName
	}
	if c.QuickBooks.CompanyFile == "" {
		c.QuickBooks.CompanyFile = DefaultCompanyFile
	}
	if c.QuickBooks.CallTimeout == 0 {
		c.QuickBooks.CallTimeout = DefaultCallTimeout
	}

	if c.Delivery.Timeout == 0 {
		c.Delivery.Timeout = DefaultDeliveryTimeout
	}
	if c.Delivery.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.Delivery.MaxRetries = &retries
	}
	if c.Delivery.RetryBackoff == 0 {
		c.Delivery.RetryBackoff = DefaultRetryBackoff
	}

	if c.TimestampFormat == "" {
		c.TimestampFormat = DefaultTimestampFormat
	}
}
