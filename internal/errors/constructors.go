package errors

// ConfigError creates a fatal configuration error.
func ConfigError(message string) *BundlerError {
	return New(CategoryConfig, SeverityFatal, message)
}

// ValidationError creates a validation error (invalid user input).
func ValidationError(message string) *BundlerError {
	return New(CategoryValidation, SeverityWarning, message)
}

// PresetError creates a preset-resolution error.
func PresetError(message string) *BundlerError {
	return New(CategoryPreset, SeverityFatal, message)
}

// IndexError creates a content-index error.
func IndexError(message string) *BundlerError {
	return New(CategoryIndex, SeverityError, message)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *BundlerError {
	return New(CategoryFileSystem, SeverityFatal, message)
}

// TelemetryError creates a best-effort telemetry error.
func TelemetryError(message string) *BundlerError {
	return New(CategoryTelemetry, SeverityWarning, message)
}
