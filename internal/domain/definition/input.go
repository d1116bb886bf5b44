package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// Input declares an externally supplied table: {"name":..., "keys":[...], "join":...}.
type Input struct {
	Name string   `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Keys []string `json:"keys" yaml:"keys" toml:"keys" hcl:"keys,optional"`
	Join string   `json:"join" yaml:"join" toml:"join" hcl:"join,optional"`
}

// ParseInput decodes one JSON input descriptor.
func ParseInput(raw string) (hub.TableNode, error) {
	var in Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return hub.TableNode{}, NewLoadError(ErrCodeInputDecode, "cannot decode input table descriptor").
			WithContext(raw).
			WithSuggestion(`Pass JSON like {"name": "scores", "keys": ["id"], "join": "left"}`).
			WithUnderlying(err)
	}
	node, err := in.node()
	if err != nil {
		return hub.TableNode{}, err.WithContext(raw)
	}
	return node, nil
}

// ParseInputs decodes every descriptor, stopping at the first failure.
func ParseInputs(raws []string) ([]hub.TableNode, error) {
	nodes := make([]hub.TableNode, 0, len(raws))
	for _, raw := range raws {
		node, err := ParseInput(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Node converts the descriptor into an empty table node.
func (in Input) Node() (hub.TableNode, error) {
	node, err := in.node()
	if err != nil {
		return hub.TableNode{}, err
	}
	return node, nil
}

func (in Input) node() (hub.TableNode, *LoadError) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return hub.TableNode{}, NewLoadError(ErrCodeInputInvalid, "input table has no name")
	}
	if hub.IsReservedName(name) {
		return hub.TableNode{}, NewLoadError(ErrCodeInputInvalid,
			fmt.Sprintf("input name %q is reserved for the root table", name)).
			WithSuggestion(fmt.Sprintf("Rename the input, for example to %q", name+"_table"))
	}
	join, err := hub.ParseJoinKind(in.Join)
	if err == nil {
		err = hub.ValidateKeys(join, in.Keys)
	}
	if err != nil {
		msg := fmt.Sprintf("input %q is invalid", name)
		le := NewLoadError(ErrCodeInputInvalid, msg).WithUnderlying(err)
		var herr *hub.Error
		if errors.As(err, &herr) && herr.Suggestion != "" {
			le = le.WithSuggestion(herr.Suggestion)
		}
		return hub.TableNode{}, le
	}
	return hub.NewEmptyTableNode(name, in.Keys, join), nil
}
