package codec

import "github.com/ingvar1995/toxcore/internal/logger"

// Error constructors for the three codec fault kinds.

func errShortBuffer(msg string) error {
	return logger.New(logger.CodeShortBuffer, msg)
}

func errDecryptFailed(msg string) error {
	return logger.New(logger.CodeDecryptFailed, msg)
}

func errMalformed(msg string) error {
	return logger.New(logger.CodeMalformed, msg)
}
