package dto

// Code is a one-time code together with the flow it was issued for.
type Code struct {
	Code        string
	CodeContext string
}
