// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the contact book as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/contactservice"
	"github.com/starford/rolodex/internal/models"
)

const recordFormatURI = "rolodex://record-format"

// Server wraps the MCP server with contact tools.
type Server struct {
	mcp *server.MCPServer
	svc *contactservice.Service
}

// New creates a new MCP server with all contact tools registered.
func New(svc *contactservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Rolodex",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List every contact, sorted by name."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Case-insensitive substring search over name, phone and email. "+
			"An empty query returns all contacts."),
		mcp.WithString("query", mcp.Description("Text to look for")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Fetch one contact by phone number."),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number of the contact")),
	), s.getContact)

	s.mcp.AddTool(mcp.NewTool("add_contact",
		mcp.WithDescription("Add a contact. Name and phone are required; the phone must be unique. "+
			"See get_record_format for the field rules."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number, used as the key")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("address", mcp.Description("Postal address")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	), s.addContact)

	s.mcp.AddTool(mcp.NewTool("update_contact",
		mcp.WithDescription("Change fields of an existing contact. Only the arguments given are changed; "+
			"an empty string clears an optional field."),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Current phone number of the contact")),
		mcp.WithString("new_phone", mcp.Description("Replacement phone number")),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("email", mcp.Description("New email address")),
		mcp.WithString("address", mcp.Description("New postal address")),
		mcp.WithString("notes", mcp.Description("New notes")),
	), s.updateContact)

	s.mcp.AddTool(mcp.NewTool("delete_contact",
		mcp.WithDescription("Delete a contact by phone number."),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number of the contact")),
	), s.deleteContact)

	s.mcp.AddTool(mcp.NewTool("contact_stats",
		mcp.WithDescription("Count contacts, and those with an email or an address."),
	), s.contactStats)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the record format and field rules of the contact book."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(recordFormatURI, "Record Format",
			mcp.WithResourceDescription("How contacts are stored and validated."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.List(ctx))
}

func (s *Server) searchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Search(ctx, req.GetString("query", "")))
}

func (s *Server) getContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Get(ctx, phone)
	if err != nil {
		return toolError(phone, err), nil
	}
	return jsonResult(c)
}

func (s *Server) addContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Add(ctx, contactservice.ContactInput{
		Name:    name,
		Phone:   phone,
		Email:   req.GetString("email", ""),
		Address: req.GetString("address", ""),
		Notes:   req.GetString("notes", ""),
	})
	if err != nil {
		return toolError(phone, err), nil
	}
	return jsonResult(c)
}

func (s *Server) updateContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Only arguments actually sent become changes, so "" can clear a field.
	fields := make(map[string]string)
	for arg, field := range map[string]string{
		"new_phone": "phone",
		"name":      "name",
		"email":     "email",
		"address":   "address",
		"notes":     "notes",
	} {
		v, ok := req.GetArguments()[arg]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%s must be a string", arg)), nil
		}
		fields[field] = str
	}

	c, err := s.svc.Update(ctx, phone, models.ChangesFromMap(fields))
	if err != nil {
		return toolError(phone, err), nil
	}
	return jsonResult(c)
}

func (s *Server) deleteContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.svc.Delete(ctx, phone)
	if err != nil {
		return toolError(phone, err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", phone)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", phone)), nil
}

func (s *Server) contactStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Stats(ctx))
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      recordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(phone string, err error) *mcp.CallToolResult {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return mcp.NewToolResultError(ve.Msg)
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", phone))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
