package guilds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
)

// ImportLegacy copies the guild→channel and guild→sheet JSON maps written by
// earlier releases into the store. Missing files are skipped and fields that
// are already set are kept. It returns the number of fields written.
func (s *Store) ImportLegacy(ctx context.Context, channelsPath, sheetsPath string) (int, error) {
	channels, err := readLegacyMap(channelsPath)
	if err != nil {
		return 0, err
	}
	sheets, err := readLegacyMap(sheetsPath)
	if err != nil {
		return 0, err
	}

	written := 0
	guildIDs := lo.Uniq(append(lo.Keys(channels), lo.Keys(sheets)...))
	sort.Strings(guildIDs)
	for _, guildID := range guildIDs {
		current, err := s.Get(ctx, guildID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return written, err
		}
		if ch, ok := channels[guildID]; ok && current.ChannelID == "" {
			if err := s.BindChannel(ctx, guildID, ch); err != nil {
				return written, err
			}
			written++
		}
		if sh, ok := sheets[guildID]; ok && current.SheetID == "" {
			if err := s.BindSheet(ctx, guildID, sh); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func readLegacyMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}
