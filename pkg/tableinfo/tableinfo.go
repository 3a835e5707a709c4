package tableinfo

const (
	PostsTableName = "posts"

	PostIDColumn        = "id"
	PostTitleColumn     = "title"
	PostContentColumn   = "content"
	PostImagePathColumn = "image_path"
	PostCreatedAtColumn = "created_at"
)

const (
	UsersTableName = "users"

	UserIDColumn           = "id"
	UserEmailColumn        = "email"
	UserPasswordHashColumn = "password_hash"
	UserCreatedAtColumn    = "created_at"
)

// PostColumns is the scan order used by every posts query.
var PostColumns = []string{
	PostIDColumn,
	PostTitleColumn,
	PostContentColumn,
	PostImagePathColumn,
	PostCreatedAtColumn,
}

var UserColumns = []string{
	UserIDColumn,
	UserEmailColumn,
	UserPasswordHashColumn,
	UserCreatedAtColumn,
}
