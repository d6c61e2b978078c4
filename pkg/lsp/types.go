package lsp

import "github.com/gnana997/m2ls/pkg/m2"

// InitializeParams holds the fields of the initialize request the server uses.
type InitializeParams struct {
	ProcessID        *int              `json:"processId"`
	RootURI          string            `json:"rootUri,omitempty"`
	RootPath         string            `json:"rootPath,omitempty"`
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

// WorkspaceFolder is a root opened by the client.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// InitializeResult announces the server capabilities.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

// ServerInfo names the server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities lists what the server answers.
type ServerCapabilities struct {
	TextDocumentSync   TextDocumentSyncOptions `json:"textDocumentSync"`
	DefinitionProvider bool                    `json:"definitionProvider"`
	CompletionProvider CompletionOptions       `json:"completionProvider"`
}

// TextDocumentSyncKind is how document changes are sent.
type TextDocumentSyncKind int

// SyncFull sends the whole document on every change.
const SyncFull TextDocumentSyncKind = 1

// TextDocumentSyncOptions configures document sync.
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose"`
	Change    TextDocumentSyncKind `json:"change"`
}

// CompletionOptions configures completion.
type CompletionOptions struct {
	ResolveProvider   bool     `json:"resolveProvider"`
	TriggerCharacters []string `json:"triggerCharacters"`
}

// TextDocumentIdentifier names a document.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// TextDocumentItem is an opened document.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// VersionedTextDocumentIdentifier names a document at a version.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// DidOpenTextDocumentParams is sent when a document is opened.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidChangeTextDocumentParams is sent when a document changes.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// TextDocumentContentChangeEvent carries the full text under SyncFull.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidCloseTextDocumentParams is sent when a document is closed.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// TextDocumentPositionParams is a cursor inside a document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     m2.Position            `json:"position"`
}

// Location is a range inside a document.
type Location struct {
	URI   string   `json:"uri"`
	Range m2.Range `json:"range"`
}

// CompletionItemKind is the icon class of a completion item.
type CompletionItemKind int

const (
	CompletionKindClass  CompletionItemKind = 7
	CompletionKindModule CompletionItemKind = 9
	CompletionKindFile   CompletionItemKind = 17
	CompletionKindEvent  CompletionItemKind = 23
)

// CompletionItem is a single suggestion.
type CompletionItem struct {
	Label    string             `json:"label"`
	Kind     CompletionItemKind `json:"kind,omitempty"`
	TextEdit *TextEdit          `json:"textEdit,omitempty"`
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   m2.Range `json:"range"`
	NewText string   `json:"newText"`
}

func completionKind(k m2.CandidateKind) CompletionItemKind {
	switch k {
	case m2.CandidateClass:
		return CompletionKindClass
	case m2.CandidateFile:
		return CompletionKindFile
	case m2.CandidateEvent:
		return CompletionKindEvent
	default:
		return CompletionKindModule
	}
}

func completionItem(c m2.Candidate) CompletionItem {
	item := CompletionItem{Label: c.Label, Kind: completionKind(c.Kind)}
	if c.Edit != nil {
		item.TextEdit = &TextEdit{Range: c.Edit.Range, NewText: c.Edit.NewText}
	}
	return item
}
