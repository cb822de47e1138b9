package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_options.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			options := buildOptions(tc)
			decoder := NewDecoder[serverOptions](options...)

			ctx := Context{
				CycleID: tc.CycleID,
				Target:  tc.Target,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				var decodeErr *Error
				if !errors.As(err, &decodeErr) {
					t.Fatalf("expected *Error, got %T", err)
				}
				if decodeErr.Stage != tc.ExpectStage {
					t.Fatalf("expected stage %q, got %q", tc.ExpectStage, decodeErr.Stage)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded values mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderRejectsNilValues(t *testing.T) {
	_, err := NewDecoder[serverOptions]().Decode(Context{Target: "server"}, nil)
	if !errors.Is(err, ErrNilValues) {
		t.Fatalf("expected ErrNilValues, got %v", err)
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	files := []string{"a"}
	input := map[string]any{"addr": "h:1", "files": files, "unset": nil}
	decoder := NewDecoder[serverOptions](
		WithPreHook[serverOptions](DropUnset),
		WithPreHook[serverOptions](splitAddrPreHook),
		WithPreHook[serverOptions](func(_ Context, values map[string]any) (map[string]any, error) {
			values["files"].([]string)[0] = "changed"
			return nil, nil
		}),
	)
	out, err := decoder.Decode(Context{}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := input["host"]; ok {
		t.Fatalf("pre-hook leaked into caller values: %v", input)
	}
	if _, ok := input["unset"]; !ok {
		t.Fatalf("DropUnset removed a key from the caller's map")
	}
	if files[0] != "a" {
		t.Fatalf("caller list was modified: %v", files)
	}
	if out.Host != "h" || out.Files[0] != "changed" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestDecoderSkipsNilOptions(t *testing.T) {
	decoder := NewDecoder[serverOptions](nil, WithPreHook[serverOptions](nil), WithPostHook[serverOptions](nil))
	out, err := decoder.Decode(Context{}, map[string]any{"port": 7})
	if err != nil || out.Port != 7 {
		t.Fatalf("expected port 7, got %+v (%v)", out, err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[serverOptions] {
	options := []DecoderOption[serverOptions]{}

	if tc.Strict {
		options = append(options, WithStrict[serverOptions]())
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "drop_unset":
			options = append(options, WithPreHook[serverOptions](DropUnset))
		case "split_addr":
			options = append(options, WithPreHook[serverOptions](splitAddrPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_tag":
			options = append(options, WithPostHook[serverOptions](defaultTagPostHook))
		case "require_port":
			options = append(options, WithPostHook[serverOptions](requirePortPostHook))
		}
	}

	return options
}

func splitAddrPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	value, ok := payload["addr"].(string)
	if !ok || value == "" {
		return payload, nil
	}

	host, port, found := strings.Cut(value, ":")
	if !found {
		return nil, fmt.Errorf("invalid addr %q", value)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port in addr %q: %w", value, err)
	}

	payload["host"] = host
	payload["port"] = n
	return payload, nil
}

func defaultTagPostHook(ctx Context, values *serverOptions) error {
	if values == nil {
		return errors.New("values is nil")
	}
	if len(values.Tags) > 0 {
		return nil
	}
	values.Tags = []string{fmt.Sprintf("%s:%s", ctx.Target, ctx.CycleID)}
	return nil
}

func requirePortPostHook(_ Context, values *serverOptions) error {
	if values.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name        string         `json:"name"`
	Target      string         `json:"target"`
	CycleID     string         `json:"cycleId"`
	Input       map[string]any `json:"input"`
	Expect      serverOptions  `json:"expect"`
	ExpectErr   string         `json:"expectErr"`
	PreHooks    []string       `json:"preHooks"`
	PostHooks   []string       `json:"postHooks"`
	ExpectStage Stage          `json:"expectStage"`
	Strict      bool           `json:"strict"`
}

type serverOptions struct {
	Port    int      `json:"port"`
	Host    string   `json:"host"`
	Verbose bool     `json:"verbose"`
	Files   []string `json:"files"`
	Tags    []string `json:"tags"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
