package user

// KnownUsersKey is a Redis hash used by the auth middleware.
// Field: username, Value: role.
const KnownUsersKey = "known_users"
