package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alf-academy/enroll/internal/auth"
	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/submission"
)

const fieldsDescription = "Form values keyed by field name (see enrollment-options), e.g. " +
	`{"firstName":"Amina","date":"2025-01-31","startTime":"09:30 AM"}`

var nowUTC = func() time.Time { return time.Now().UTC() }

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("enrollment-options",
			mcp.WithDescription("List the wizard steps, their fields, the allowed choices and the bookable time slots"),
		),
		s.handleOptions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("validate-enrollment",
			mcp.WithDescription("Validate an enrollment form step by step without submitting it"),
			mcp.WithObject("fields", mcp.Required(), mcp.Description(fieldsDescription)),
		),
		s.handleValidate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit-enrollment",
			mcp.WithDescription("Validate and submit an enrollment form to the student API"),
			mcp.WithObject("fields", mcp.Required(), mcp.Description(fieldsDescription)),
			mcp.WithBoolean("dry_run", mcp.Description("Return the payload instead of sending it")),
		),
		s.handleSubmit,
	)
}

type fieldInfo struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []string `json:"options,omitempty"`
}

type stepInfo struct {
	Step   int         `json:"step"`
	Title  string      `json:"title"`
	Fields []fieldInfo `json:"fields"`
}

type optionsResult struct {
	Steps        []stepInfo           `json:"steps"`
	Slots        []string             `json:"slots"`
	Countries    []enrollment.Country `json:"countries"`
	OtherDetails string               `json:"other_details"`
}

func (s *Server) handleOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.deps.Validator
	out := optionsResult{
		Slots:        v.Slots(),
		Countries:    enrollment.Countries(),
		OtherDetails: "optional",
	}
	if v.Policy().OtherDetailsRequired {
		out.OtherDetails = "required"
	}

	for _, step := range enrollment.Steps {
		def, _ := v.Definition(step)
		info := stepInfo{Step: int(step), Title: def.Title}
		labels := make(map[enrollment.Field]string)
		for _, r := range def.Rules {
			if _, ok := labels[r.Field]; !ok {
				labels[r.Field] = r.Label
			}
		}
		for _, f := range def.Fields() {
			fi := fieldInfo{Name: string(f), Label: labels[f]}
			if f != enrollment.FieldCountry {
				fi.Options = enrollment.OptionsFor(f)
			}
			if f == enrollment.FieldStartTime {
				fi.Options = v.Slots()
			}
			info.Fields = append(info.Fields, fi)
		}
		out.Steps = append(out.Steps, info)
	}
	return jsonResult(out)
}

type validateResult struct {
	Valid   bool                `json:"valid"`
	Steps   []enrollment.Result `json:"steps"`
	EndTime string              `json:"endTime,omitempty"`
	Prompt  string              `json:"prompt,omitempty"`
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	form, err := s.formFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := validateResult{Valid: true, EndTime: form.Get(enrollment.FieldEndTime)}
	for _, step := range enrollment.Steps {
		res := s.deps.Validator.Validate(form, step)
		out.Steps = append(out.Steps, res)
		if !res.Valid && out.Valid {
			out.Valid = false
			out.Prompt = res.Prompt()
		}
	}
	return jsonResult(out)
}

type submitResult struct {
	Submitted bool                `json:"submitted"`
	Receipt   *submission.Receipt `json:"receipt,omitempty"`
	Payload   *submission.Payload `json:"payload,omitempty"`
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Client == nil {
		return mcp.NewToolResultError("submissions are not configured on this server"), nil
	}
	form, err := s.formFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if request.GetBool("dry_run", false) {
		p, err := s.deps.Client.Payload(form)
		if err != nil {
			return mcp.NewToolResultError(describe(err)), nil
		}
		return jsonResult(submitResult{Payload: p})
	}

	nav := enrollment.NewNavigator(form, s.deps.Validator)
	if res := nav.Seek(); !res.Valid {
		return mcp.NewToolResultError(res.Prompt()), nil
	}

	// Keep a copy: a successful submission resets the form.
	pending := form.Clone()
	receipt, err := s.deps.Client.SubmitWizard(ctx, nav)
	if err != nil {
		s.saveDraft(pending, err)
		return mcp.NewToolResultError(describe(err)), nil
	}
	return jsonResult(submitResult{Submitted: true, Receipt: receipt})
}

func (s *Server) saveDraft(f *enrollment.Form, cause error) {
	if s.deps.Drafts == nil || enrollment.IsValidationError(cause) {
		return
	}
	path, err := s.deps.Drafts.SaveForm(drafts.NameFor(f, nowUTC()), f, cause.Error())
	if err != nil {
		logger.Warn("Failed to save draft after submission error: %v", err)
		return
	}
	logger.Info("Saved failed submission to %s", path)
}

// formFromRequest builds a form from the "fields" argument. String and
// number values are accepted; anything else is an error.
func (s *Server) formFromRequest(request mcp.CallToolRequest) (*enrollment.Form, error) {
	args := request.GetArguments()
	if args == nil {
		return nil, errors.New("no arguments provided")
	}
	raw, ok := args["fields"].(map[string]any)
	if !ok {
		return nil, errors.New("missing or invalid 'fields' parameter")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[enrollment.Field]string, len(raw))
	for _, k := range keys {
		field, err := enrollment.ParseField(k)
		if err != nil {
			return nil, err
		}
		if field == enrollment.FieldEndTime {
			continue
		}
		switch v := raw[k].(type) {
		case string:
			values[field] = v
		case float64:
			values[field] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			return nil, fmt.Errorf("field %q must be a string or number", k)
		}
	}

	form := s.deps.NewForm()
	if err := form.Load(values); err != nil {
		return nil, err
	}
	return form, nil
}

// describe turns the submission error taxonomy into one line for the caller.
func describe(err error) string {
	var ve *enrollment.ValidationError
	var apiErr *submission.APIError
	switch {
	case errors.As(err, &ve):
		return ve.Prompt()
	case errors.As(err, &apiErr):
		return fmt.Sprintf("student API rejected the enrollment (%d): %s", apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, auth.ErrNoSession):
		return auth.ErrNoSession.Error()
	default:
		return err.Error()
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
