package mkfs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/numbfs/go-numbfs/internal/numbfs/types"
)

// ParseSize parses a human-readable size such as "10M", "512K" or
// "1G". A bare number is taken as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, types.NewFsError(types.ErrInvalidArgument, "mkfs.ParseSize", "",
			"empty size")
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, types.NewFsError(types.ErrInvalidArgument, "mkfs.ParseSize", "",
			fmt.Sprintf("malformed size %q", s))
	}
	return n * mult, nil
}
