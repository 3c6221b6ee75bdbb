package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// ConversationsConfig configures a JSONL-backed conversations dataset.
// Each line of the file is one conversation: an object with a
// "conversation" array of turns.
type ConversationsConfig struct {
	Name      string         `mapstructure:"name"`
	Path      string         `mapstructure:"path"`
	MaxLength int            `mapstructure:"max_length"`
	Template  PromptTemplate `mapstructure:"template"`

	// Repeats oversamples the file; Len reports Repeats * RealLen.
	Repeats int `mapstructure:"repeats"`
}

// ConversationsDataset applies a prompt template and a text processor
// to conversations loaded from a JSONL file, yielding encoded records.
type ConversationsDataset struct {
	cfg           ConversationsConfig
	tp            TextProcessor
	conversations []Conversation
}

// RegisterConversations registers the "conversations" dataset kind,
// bound to the text processor every built instance will encode with.
func RegisterConversations(tp TextProcessor) {
	Register("conversations", func(cfg map[string]any) (Dataset, error) {
		decoded, err := DecodeConversationsConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewConversations(decoded, tp)
	})
}

// NewConversations loads and expands every conversation up front;
// encoding happens lazily per Get so records stay independent.
func NewConversations(cfg ConversationsConfig, tp TextProcessor) (*ConversationsDataset, error) {
	if tp == nil {
		return nil, fmt.Errorf("conversations dataset needs a text processor")
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening conversations file: %w", err)
	}
	defer f.Close()

	ds := &ConversationsDataset{cfg: cfg, tp: tp}
	if ds.cfg.Repeats < 1 {
		ds.cfg.Repeats = 1
	}
	if ds.cfg.Name == "" {
		ds.cfg.Name = cfg.Path
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry struct {
			Conversation Conversation `json:"conversation"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", cfg.Path, line, err)
		}
		if len(entry.Conversation) == 0 {
			return nil, fmt.Errorf("%s line %d: empty conversation", cfg.Path, line)
		}

		if err := cfg.Template.Apply(entry.Conversation); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", cfg.Path, line, err)
		}

		ds.conversations = append(ds.conversations, entry.Conversation)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.Path, err)
	}

	return ds, nil
}

// DecodeConversationsConfig decodes a registry configuration map into a
// typed config, for callers wiring this dataset through Build-style
// config plumbing.
func DecodeConversationsConfig(cfg map[string]any) (ConversationsConfig, error) {
	var out ConversationsConfig
	if err := mapstructure.Decode(cfg, &out); err != nil {
		return ConversationsConfig{}, fmt.Errorf("decoding conversations config: %w", err)
	}
	return out, nil
}

func (d *ConversationsDataset) Name() string { return d.cfg.Name }

func (d *ConversationsDataset) Len() int { return d.cfg.Repeats * len(d.conversations) }

func (d *ConversationsDataset) RealLen() int { return len(d.conversations) }

func (d *ConversationsDataset) Get(i int) (Record, error) {
	if i < 0 || i >= d.Len() {
		return Record{}, fmt.Errorf("index %d out of range [0, %d)", i, d.Len())
	}

	example, err := EncodeConversation(d.tp, d.conversations[i%len(d.conversations)], d.cfg.MaxLength)
	if err != nil {
		return Record{}, err
	}

	return Record{InputIDs: example.InputIDs, Labels: example.Labels}, nil
}
