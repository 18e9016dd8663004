package domain

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	roomCodeLength = 6
	itemIDLength   = 8

	roomCodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var roomCodeCharsetLen = big.NewInt(int64(len(roomCodeChars)))

// NewRoomCode returns a short, human-typeable room code. Codes are not
// guaranteed unique; callers must retry creation on collision.
func NewRoomCode() (string, error) {
	var sb strings.Builder
	sb.Grow(roomCodeLength)

	for i := 0; i < roomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, roomCodeCharsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomCodeChars[n.Int64()])
	}

	return sb.String(), nil
}

// NewUserID returns an opaque participant identifier.
func NewUserID() string {
	return uuid.NewString()
}

// NewItemID returns a short identifier for nominations, questions, answer
// options and chat messages. Unique within a room for any practical volume.
func NewItemID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:itemIDLength]
}
