package validate

import "fmt"

// ConfigurationError reports an out-of-range threshold. It is returned before
// any analysis runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// DatasetTooLargeError is returned when the record-count guard is exceeded.
type DatasetTooLargeError struct {
	Records int
	Limit   int
}

func (e *DatasetTooLargeError) Error() string {
	return fmt.Sprintf("dataset has %d records, exceeding the configured limit of %d", e.Records, e.Limit)
}
