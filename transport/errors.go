package transport

import "github.com/ingvar1995/toxcore/internal/logger"

var errAckShort = logger.New(logger.CodeShortBuffer, "transport: ack payload shorter than 16 bytes")
