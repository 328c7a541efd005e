package models

// Well-known settings keys. Provider API keys use KeyAPIKeyPrefix + provider id.
const (
	KeyLicenseKey    = "license_key"
	KeyLicenseStatus = "license_status"
	KeyDeviceID      = "device_installation_id"
	KeySystemUsage   = "system_usage"
	KeyAPIKeyPrefix  = "apikey_"
)

// License status values stored under KeyLicenseStatus.
const (
	LicenseActive   = "active"
	LicenseInactive = "inactive"
)
