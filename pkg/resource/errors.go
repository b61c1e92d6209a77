package resource

import "errors"

var (
	ErrLoadFailed         = errors.New("resource: load failed")
	ErrNotFound           = errors.New("resource: not found")
	ErrInvalidLocation    = errors.New("resource: invalid s3 location")
	ErrInvalidS3Config    = errors.New("resource: invalid s3 config")
	ErrInvalidRedisConfig = errors.New("resource: invalid redis config")
	ErrRedisNotReady      = errors.New("resource: redis did not become ready")
)
