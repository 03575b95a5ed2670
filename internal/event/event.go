// internal/event/event.go
package event

// Type identifies the kind of event.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Layer stack events
	TypeLayersChanged     // Fired after a layer is added, removed, moved or renamed
	TypeLayerSelected     // Fired when the active layer changes
	TypeVisibilityChanged // Fired when a layer (and its cascade) is shown or hidden

	// Document events
	TypeDocumentComposed // Fired after an edit was reconciled and the document recomposed
	TypeTransformApplied // Fired after a tool result was folded into the document

	// History events
	TypeUndo
	TypeRedo
)

func (t Type) String() string {
	switch t {
	case TypeLayersChanged:
		return "layers-changed"
	case TypeLayerSelected:
		return "layer-selected"
	case TypeVisibilityChanged:
		return "visibility-changed"
	case TypeDocumentComposed:
		return "document-composed"
	case TypeTransformApplied:
		return "transform-applied"
	case TypeUndo:
		return "undo"
	case TypeRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type        // The kind of event
	Data interface{} // Payload carrying event-specific data
}

// --- Specific Event Data Structures ---

// LayersChangedData describes a structural change of the stack.
type LayersChangedData struct {
	Action string // "add", "remove", "move" or "rename"
	LayerID int   // Flattened position after the change (before it for "remove")
	Count   int   // Number of layers in the stack after the change
}

// LayerSelectedData carries the newly active layer.
type LayerSelectedData struct {
	LayerID  int
	Previous int
}

// VisibilityChangedData carries the layer whose visibility was toggled.
type VisibilityChangedData struct {
	LayerID int
	Visible bool
}

// DocumentComposedData carries the composed text and the layer the edit went to.
type DocumentComposedData struct {
	ActiveID int
	Text     string
	Skipped  bool // The edit was ignored because the active layer is hidden
}

// TransformAppliedData describes a tool run.
type TransformAppliedData struct {
	Tool   string
	Start  int
	End    int
	Result string
}

// HistoryData is sent with TypeUndo and TypeRedo.
type HistoryData struct {
	SnapshotID string
	ActiveID   int
}
