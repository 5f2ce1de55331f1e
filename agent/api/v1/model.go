package v1

import (
	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/nfs"
	"github.com/erikmagkekse/nfs-manager/provision"
)

type (
	ExportRecord        = exports.Record
	ActiveExport        = nfs.ActiveExport
	ExportCreateRequest = provision.Request
)

type ExportListResponse struct {
	Exports []ExportRecord `json:"exports"`
	Total   int            `json:"total"`
}

type ActiveExportListResponse struct {
	Exports []ActiveExport `json:"exports"`
	Total   int            `json:"total"`
}

type ExportCreateResponse = provision.Result

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Commit        string            `json:"commit"`
	UptimeSeconds int               `json:"uptime_seconds"`
	Features      map[string]string `json:"features"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
