package service

import "github.com/ibreez3/pixel-ai/chat"

type CatalogResponse struct {
	Models   []chat.ModelInfo `json:"models"`
	Current  string           `json:"current"`
	Fallback string           `json:"fallback"`
}

func GetCatalog(c chat.Catalog, current string) CatalogResponse {
	return CatalogResponse{Models: c.Models(), Current: current, Fallback: c.Fast.ID}
}
