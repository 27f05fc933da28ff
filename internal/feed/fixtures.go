package feed

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// fixtureFile 是 TOML 块文件的结构：
//
//	[[blocks]]
//	kind = "poll"
//	title = "..."
type fixtureFile struct {
	Blocks []Block `toml:"blocks"`
}

// LoadBlocks 从 TOML 文件读取内容块。
func LoadBlocks(path string) ([]Block, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file fixtureFile
	if err := toml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make([]Block, 0, len(file.Blocks))
	for _, b := range file.Blocks {
		out = append(out, b.normalize())
	}
	return out, nil
}

var generatedNamespace = uuid.MustParse("6f1c1f1e-3d8a-4f55-9a47-3c1f0b7e2d10")

var (
	authors = []string{"mika", "oren", "sasha", "lu", "devi", "tam", "noor"}
	words   = strings.Fields(`signal harbor lantern quiet orbit marble cedar velvet rust
		meadow copper tide ember fable pixel atlas glacier prism echo willow basalt
		comet thistle canyon drift lumen saffron quartz`)
)

// Generate 生成 n 个确定性的异构内容块（同一 seed 产生同样的 id 与文本）。
func Generate(n int, seed int64) []Block {
	rng := rand.New(rand.NewSource(seed))
	kinds := []Kind{KindText, KindText, KindImage, KindPoll, KindLink}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Block, 0, n)
	for i := 0; i < n; i++ {
		kind := kinds[rng.Intn(len(kinds))]
		b := Block{
			BlockID:   uuid.NewSHA1(generatedNamespace, []byte(fmt.Sprintf("%d/%d", seed, i))).String(),
			Kind:      kind,
			Author:    authors[rng.Intn(len(authors))],
			Title:     sentence(rng, 2+rng.Intn(5)),
			Body:      paragraph(rng, 1+rng.Intn(4)),
			CreatedAt: base.Add(time.Duration(i) * 17 * time.Minute),
		}
		switch kind {
		case KindImage:
			b.URL = fmt.Sprintf("https://img.example.test/%d.png", i)
		case KindLink:
			b.URL = fmt.Sprintf("https://example.test/posts/%d", i)
		case KindPoll:
			opts := 2 + rng.Intn(3)
			for j := 0; j < opts; j++ {
				b.Options = append(b.Options, sentence(rng, 1+rng.Intn(3)))
			}
		}
		out = append(out, b)
	}
	return out
}

func sentence(rng *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rng.Intn(len(words))]
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func paragraph(rng *rand.Rand, sentences int) string {
	parts := make([]string, sentences)
	for i := range parts {
		parts[i] = sentence(rng, 4+rng.Intn(10)) + "."
	}
	return strings.Join(parts, " ")
}
