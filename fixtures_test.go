package modelstate

type User struct {
	Record
}

type Person struct {
	Record
}

type Article struct {
	Record
	Uuids
}

type Token struct {
	Record
	Ulids
}

type Hybrid struct {
	Record
	Uuids
	Ulids
}

type uuidModel struct {
	Record
	Uuids
}

// Admin inherits the uuid trait through uuidModel.
type Admin struct {
	uuidModel
}

type RoleUser struct {
	Pivot
}

type Membership struct {
	Record
	PivotTrait
}

type HTTPRequestLog struct {
	Record
}

type Account struct {
	Record
}

func (*Account) TableName() string { return "billing.accounts" }
func (*Account) KeyType() string   { return "string" }
func (*Account) KeyName() string   { return "number" }

type Event struct {
	Record
}

func (*Event) CreatedAtColumn() string { return "created_on" }
func (*Event) UpdatedAtColumn() string { return "" }

type notAModel struct {
	Name string
}

// stubModel exposes every piece of state explicitly.
type stubModel struct {
	attributes map[string]any
	original   map[string]any
	dirty      map[string]any
	hidden     []string
	exists     bool
	created    bool
}

func (s *stubModel) Attributes() map[string]any  { return s.attributes }
func (s *stubModel) RawOriginal() map[string]any { return s.original }
func (s *stubModel) Dirty() map[string]any       { return s.dirty }
func (s *stubModel) Exists() bool                { return s.exists }
func (s *stubModel) WasRecentlyCreated() bool    { return s.created }
func (s *stubModel) HiddenAttributes() []string  { return s.hidden }

const registeredUser = "modelstate.test.user"

func init() {
	Register(registeredUser, func() Model { return &Article{} })
}
