// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"fitmenu/internal/menuparse"
)

var errInvalidParams = errors.New("invalid parameters")

const dateLayout = "2006-01-02"

type GetTodayMenuParams struct {
	Save bool `json:"save,omitempty" description:"Store the planned menu in the history database"`
}

type GetMenusParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for menu query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for menu query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of menus to return"`
}

type ParseFragmentsParams struct {
	Date      string   `json:"date" description:"Menu date"`
	Fragments []string `json:"fragments" description:"Text fragments of the menu body, in page order, without the header"`
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %w", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: failed to unmarshal parameters: %w", errInvalidParams, err)
	}

	return nil
}

// handleGetTodayMenu scrapes, plans and optionally stores today's menu.
func (s *MenuServer) handleGetTodayMenu(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetTodayMenuParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	result, err := s.planner.Today(ctx, params.Save)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(map[string]interface{}{
		"menu":    result.Menu,
		"plan":    result.Plan,
		"summary": result.Plan.Summary(),
	})
}

// handleGetMenus retrieves stored menus
func (s *MenuServer) handleGetMenus(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMenusParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	for _, d := range []string{params.StartDate, params.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errInvalidParams, d)
		}
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	menus, err := s.store.GetMenus(ctx, params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve menus: %w", err)
	}

	return s.createJSONResponse(menus)
}

func (s *MenuServer) handleParseFragments(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ParseFragmentsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Date == "" {
		return nil, fmt.Errorf("%w: date is required", errInvalidParams)
	}

	b := menuparse.NewBuilder(params.Date, s.logger)
	for _, fragment := range params.Fragments {
		if err := b.Feed(fragment); err != nil {
			return s.parseFailure(err)
		}
	}
	menu, err := b.Finish()
	if err != nil {
		return s.parseFailure(err)
	}

	return s.createJSONResponse(menu)
}

// parseFailure reports a parse error as tool output rather than a transport
// failure; the caller supplied the text.
func (s *MenuServer) parseFailure(err error) (*protocol.CallToolResult, error) {
	res, jerr := s.createJSONResponse(map[string]string{
		"error": err.Error(),
		"kind":  menuparse.Kind(err),
	})
	if jerr != nil {
		return nil, jerr
	}
	res.IsError = true
	return res, nil
}

func (s *MenuServer) registerTools() {
	s.tools = map[string]toolHandler{
		"get_today_menu":  s.handleGetTodayMenu,
		"get_menus":       s.handleGetMenus,
		"parse_fragments": s.handleParseFragments,
	}

	for name := range s.tools {
		s.logger.Debug("registered tool", zap.String("tool", name))
	}
}
