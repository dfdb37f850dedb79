// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package modify

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/workbench"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
)

// fieldValue binds one form control to a parameter. read returns the
// typed value the user left in the control.
type fieldValue struct {
	spec    param.Spec
	current any
	read    func() (any, error)
}

// editInteractively asks for a node and then for every editable field of
// that node. Only values that differ from the node's current data are staged.
func editInteractively(batch *modifier.Batch, wb *workbench.Workbench, g *workflow.Graph) error {
	if len(g.Nodes) == 0 {
		return shared.NewInvalidInputError("graph has no nodes to edit", nil)
	}

	options := make([]huh.Option[string], 0, len(g.Nodes))
	for _, n := range g.Nodes {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", n.ID, n.Type), n.ID))
	}
	var nodeID string
	pick := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Node").
			Description("Choose the node to edit").
			Options(options...).
			Value(&nodeID),
	))
	if err := runForm(pick); err != nil {
		return err
	}

	fields, err := wb.Fields(g, nodeID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return shared.NewInvalidInputError(fmt.Sprintf("node %s has no editable fields", nodeID), nil)
	}

	node := g.Node(nodeID)
	checker := param.NewChecker(nil)
	controls := make([]huh.Field, 0, len(fields))
	values := make([]fieldValue, 0, len(fields))
	for _, spec := range fields {
		current, ok := node.Data[spec.Name]
		if !ok {
			current = spec.Default
		}
		control, fv := formField(spec, current, func(v any) error {
			return checker.Check(spec, v, node.Data)
		})
		controls = append(controls, control)
		values = append(values, fv)
	}

	form := huh.NewForm(huh.NewGroup(controls...).Title(fmt.Sprintf("Edit %s", nodeID)))
	if err := runForm(form); err != nil {
		return err
	}

	for _, fv := range values {
		v, err := fv.read()
		if err != nil {
			return err
		}
		if sameValue(v, fv.current) {
			continue
		}
		batch.Stage(nodeID, fv.spec.Name, v)
	}
	return nil
}

func formField(spec param.Spec, current any, check func(any) error) (huh.Field, fieldValue) {
	title := spec.Label
	if title == "" {
		title = spec.Name
	}
	fv := fieldValue{spec: spec, current: current}

	switch {
	case spec.Type == param.TypeBoolean:
		b, _ := current.(bool)
		fv.read = func() (any, error) { return b, nil }
		return huh.NewConfirm().Title(title).Description(spec.Description).Value(&b), fv

	case spec.Type == param.TypeSelect && len(spec.Options) > 0:
		s := display(current)
		fv.read = func() (any, error) { return s, nil }
		return huh.NewSelect[string]().
			Title(title).
			Description(spec.Description).
			Options(huh.NewOptions(spec.Options...)...).
			Value(&s), fv

	default:
		s := display(current)
		parse := func(raw string) (any, error) {
			if raw == "" && !spec.Required {
				return current, nil
			}
			return param.Parse(spec, raw)
		}
		fv.read = func() (any, error) { return parse(s) }
		return huh.NewInput().
			Title(title).
			Description(spec.Description).
			Value(&s).
			Validate(func(raw string) error {
				v, err := parse(raw)
				if err != nil {
					return err
				}
				return check(v)
			}), fv
	}
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return &shared.ExitError{Code: shared.ExitFailed, Message: "cancelled"}
		}
		return err
	}
	return nil
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func sameValue(a, b any) bool {
	if fa, ok := param.Number(a); ok {
		fb, ok := param.Number(b)
		return ok && fa == fb
	}
	return display(a) == display(b)
}
