package branches

type BranchForm struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
}

type renameForm struct {
	Name string `json:"name"`
}
