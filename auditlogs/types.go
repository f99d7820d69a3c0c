package auditlogs

// LogsResponse is the body of GET logs.
type LogsResponse struct {
	Entries          []Entry          `json:"entries"`
	ResponseMetadata ResponseMetadata `json:"response_metadata"`
	OK               *bool            `json:"ok,omitempty"`
	Warning          string           `json:"warning,omitempty"`
	Error            string           `json:"error,omitempty"`
	Needed           string           `json:"needed,omitempty"`
	Provided         string           `json:"provided,omitempty"`
}

// ResponseMetadata carries the cursor for the next page, if any.
type ResponseMetadata struct {
	NextCursor string `json:"next_cursor,omitempty"`
}

// Entry is one audit event.
type Entry struct {
	ID         string         `json:"id"`
	DateCreate int64          `json:"date_create"`
	Action     string         `json:"action"`
	Actor      Actor          `json:"actor"`
	Entity     Entity         `json:"entity"`
	Context    Context        `json:"context"`
	Details    map[string]any `json:"details,omitempty"`
}

// Actor is who performed the action.
type Actor struct {
	Type string `json:"type"`
	User *User  `json:"user,omitempty"`
}

// User identifies a workspace or org member.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Team  string `json:"team,omitempty"`
}

// Entity is the target of the action. Only the field named by Type is set.
type Entity struct {
	Type       string     `json:"type"`
	User       *User      `json:"user,omitempty"`
	Workspace  *Location  `json:"workspace,omitempty"`
	Enterprise *Location  `json:"enterprise,omitempty"`
	Channel    *Channel   `json:"channel,omitempty"`
	File       *File      `json:"file,omitempty"`
	App        *App       `json:"app,omitempty"`
	Workflow   *Workflow  `json:"workflow,omitempty"`
	Usergroup  *Usergroup `json:"usergroup,omitempty"`
	Barrier    *Barrier   `json:"barrier,omitempty"`
	Message    *Message   `json:"message,omitempty"`
	Huddle     *Huddle    `json:"huddle,omitempty"`
	Role       *Role      `json:"role,omitempty"`
}

// ID returns the identifier of whichever typed target is set.
func (e Entity) ID() string {
	switch {
	case e.User != nil:
		return e.User.ID
	case e.Workspace != nil:
		return e.Workspace.ID
	case e.Enterprise != nil:
		return e.Enterprise.ID
	case e.Channel != nil:
		return e.Channel.ID
	case e.File != nil:
		return e.File.ID
	case e.App != nil:
		return e.App.ID
	case e.Workflow != nil:
		return e.Workflow.ID
	case e.Usergroup != nil:
		return e.Usergroup.ID
	case e.Barrier != nil:
		return e.Barrier.ID
	case e.Message != nil:
		return e.Message.Timestamp
	case e.Huddle != nil:
		return e.Huddle.ID
	case e.Role != nil:
		return e.Role.ID
	}
	return ""
}

// Location is a workspace or enterprise.
type Location struct {
	Type   string `json:"type,omitempty"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Channel is a conversation target.
type Channel struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Privacy         string   `json:"privacy,omitempty"`
	IsShared        bool     `json:"is_shared,omitempty"`
	IsOrgShared     bool     `json:"is_org_shared,omitempty"`
	TeamsSharedWith []string `json:"teams_shared_with,omitempty"`
}

// File is an uploaded file target.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Filetype string `json:"filetype,omitempty"`
	Title    string `json:"title,omitempty"`
}

// App is an installed app target.
type App struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name,omitempty"`
	IsDistributed       bool     `json:"is_distributed,omitempty"`
	IsDirectoryApproved bool     `json:"is_directory_approved,omitempty"`
	IsWorkflowApp       bool     `json:"is_workflow_app,omitempty"`
	Scopes              []string `json:"scopes,omitempty"`
}

// Workflow is a workflow target.
type Workflow struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Usergroup is a user group target.
type Usergroup struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Barrier is an information barrier target.
type Barrier struct {
	ID                      string   `json:"id"`
	PrimaryUsergroup        string   `json:"primary_usergroup,omitempty"`
	BarrieredFromUsergroups []string `json:"barriered_from_usergroups,omitempty"`
	RestrictedSubjects      []string `json:"restricted_subjects,omitempty"`
	DateUpdate              int64    `json:"date_update,omitempty"`
}

// Message is a message target, identified by channel and timestamp.
type Message struct {
	Channel   string `json:"channel,omitempty"`
	Team      string `json:"team,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Huddle is a huddle target.
type Huddle struct {
	ID                string `json:"id"`
	DateStart         int64  `json:"date_start,omitempty"`
	DateEnd           int64  `json:"date_end,omitempty"`
	ParticipantsCount int    `json:"participants_count,omitempty"`
}

// Role is a role target.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Context describes where the action happened.
type Context struct {
	Location  Location `json:"location"`
	UA        string   `json:"ua,omitempty"`
	IPAddress string   `json:"ip_address,omitempty"`
	SessionID int64    `json:"session_id,omitempty"`
	App       *App     `json:"app,omitempty"`
}

// SchemasResponse is the body of GET schemas.
type SchemasResponse struct {
	Schemas []Schema `json:"schemas"`
}

// Schema describes one object type returned by the API.
type Schema struct {
	Type       string         `json:"type"`
	Workspace  map[string]any `json:"workspace,omitempty"`
	Enterprise map[string]any `json:"enterprise,omitempty"`
	User       map[string]any `json:"user,omitempty"`
	File       map[string]any `json:"file,omitempty"`
	Channel    map[string]any `json:"channel,omitempty"`
	App        map[string]any `json:"app,omitempty"`
	Workflow   map[string]any `json:"workflow,omitempty"`
	Barrier    map[string]any `json:"barrier,omitempty"`
	Message    map[string]any `json:"message,omitempty"`
}

// ActionsResponse is the body of GET actions: action names grouped by category.
type ActionsResponse struct {
	Actions map[string][]string `json:"actions"`
}
