package state

import "errors"

var (
	ErrUnknownSender          = errors.New("advertisement from a node that is not a neighbour")
	ErrMalformedAdvertisement = errors.New("malformed advertisement")
	ErrInvalidNetwork         = errors.New("invalid administered network")
	ErrAlreadyBootstrapped    = errors.New("routing table already bootstrapped")
)
