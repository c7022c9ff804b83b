package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// nextSerialSeqScript increments the per-millisecond counter and gives the key
// a short TTL the first time it is created.
var nextSerialSeqScript = redis.NewScript(`
	local seq = redis.call('INCR', KEYS[1])
	if seq == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return seq
`)

const (
	// SerialNumberPrefix prefixes every appointment serial number
	SerialNumberPrefix = "APT-"

	redisSerialKeyPrefix = "appointment:serial:"
	serialKeyTTL         = 5 * time.Second
	serialRedisTimeout   = 500 * time.Millisecond
)

// SerialNumberService generates appointment serial numbers of the form
// APT-<base36 unix millis><base36 sequence>.
type SerialNumberService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	now         func() time.Time
}

// NewSerialNumberService creates a SerialNumberService. A nil redisClient makes
// every serial use a random suffix.
func NewSerialNumberService(redisClient *redis.Client, log *logrus.Logger) *SerialNumberService {
	return &SerialNumberService{
		redisClient: redisClient,
		log:         log,
		now:         time.Now,
	}
}

// Next returns a new serial number. It never fails: when redis is unreachable
// the sequence is replaced by random bits and the DB unique index arbitrates.
func (s *SerialNumberService) Next(ctx context.Context) string {
	millis := s.now().UnixMilli()
	stamp := strings.ToUpper(strconv.FormatInt(millis, 36))

	if s.redisClient != nil {
		seq, err := s.nextSequence(ctx, millis)
		if err == nil {
			return SerialNumberPrefix + stamp + strings.ToUpper(strconv.FormatInt(seq, 36))
		}
		s.log.Warnf("Failed to get serial sequence from redis, using random suffix: %+v", err)
	}

	return SerialNumberPrefix + stamp + randomSuffix()
}

func (s *SerialNumberService) nextSequence(ctx context.Context, millis int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, serialRedisTimeout)
	defer cancel()

	key := fmt.Sprintf("%s%d", redisSerialKeyPrefix, millis)
	seq, err := nextSerialSeqScript.Run(ctx, s.redisClient, []string{key}, serialKeyTTL.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("lua serial sequence: %w", err)
	}
	return seq, nil
}

// randomSuffix returns 4 base36 characters prefixed with Z so it never
// collides with the short redis sequences.
func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "Z0000"
	}
	n := binary.BigEndian.Uint32(b[:]) % (36 * 36 * 36 * 36)
	digits := strings.ToUpper(strconv.FormatUint(uint64(n), 36))
	return "Z" + strings.Repeat("0", 4-len(digits)) + digits
}
