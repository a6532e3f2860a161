package game

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// UniqueIdGenerator hands out identifiers that stay unique until disposed.
type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

// CodeGenerator produces room codes, retrying until the code is not held by
// any live session.
type CodeGenerator struct {
	locker sync.Mutex
	live   map[string]struct{}
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{live: make(map[string]struct{})}
}

func (g *CodeGenerator) Generate() string {
	g.locker.Lock()
	defer g.locker.Unlock()

	for {
		var sb strings.Builder
		for i := 0; i < roomCodeLength; i++ {
			sb.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
		}
		code := sb.String()
		if _, taken := g.live[code]; !taken {
			g.live[code] = struct{}{}
			return code
		}
	}
}

func (g *CodeGenerator) Dispose(code string) {
	g.locker.Lock()
	defer g.locker.Unlock()
	delete(g.live, code)
}

// NewPlayerId returns an opaque per-connection player identity.
func NewPlayerId() string {
	return uuid.NewString()
}
