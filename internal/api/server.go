// Package api exposes a read-only inspection surface over one parsed
// NVRAM store. Updates stay CLI-only; every endpoint reports from the
// in-memory image loaded at startup.
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/pnvram/internal/logger"
	"github.com/samcharles93/pnvram/internal/vpd"
	"github.com/samcharles93/pnvram/pkg/nvram"
)

type Server struct {
	store *nvram.Store
	log   logger.Logger
}

func NewServer(store *nvram.Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{store: store, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/partitions", s.handlePartitions)
	e.GET("/v1/config", s.handleConfig)
	e.GET("/v1/vpd", s.handleVPD)
}

func (s *Server) handlePartitions(c *echo.Context) error {
	parts := s.store.Partitions()
	list := PartitionList{
		ReportID:   newReportID(),
		Store:      s.store.Path,
		Partitions: make([]PartitionInfo, 0, len(parts)),
		Warnings:   s.store.Warnings(),
	}
	for i, p := range parts {
		hdr := p.Header
		list.Partitions = append(list.Partitions, PartitionInfo{
			Index:      i,
			Signature:  hdr.Signature,
			Checksum:   hdr.Checksum,
			ChecksumOK: hdr.Checksum == hdr.ComputedChecksum(),
			Blocks:     int(hdr.Length),
			Bytes:      hdr.ByteLen(),
			Offset:     p.Offset,
			Name:       hdr.NameString(),
		})
	}
	return writeJSON(c, http.StatusOK, list)
}

func (s *Server) handleConfig(c *echo.Context) error {
	partName := c.QueryParam("partition")
	varName := c.QueryParam("name")

	resp := ConfigResponse{ReportID: newReportID()}

	if varName != "" {
		values, err := s.store.LookupConfig(varName, partName)
		if err != nil {
			return writeStoreError(c, err)
		}
		resp.Values = values
		return writeJSON(c, http.StatusOK, resp)
	}

	cfgs, err := s.store.ReadConfig(partName)
	if err != nil {
		return writeStoreError(c, err)
	}
	for _, cfg := range cfgs {
		sec := ConfigSection{Partition: cfg.Partition, Records: make([]ConfigRecord, 0, len(cfg.Records))}
		for _, rec := range cfg.Records {
			sec.Records = append(sec.Records, ConfigRecord{Name: rec.Name, Value: rec.Value})
		}
		resp.Sections = append(resp.Sections, sec)
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleVPD(c *echo.Context) error {
	showAll := c.QueryParam("all") == "1" || c.QueryParam("all") == "true"

	p := s.store.Find(nvram.SigHW, "ibm,vpd", nil)
	if p == nil {
		return writeNotFound(c, "there is no ibm,vpd partition")
	}

	sections, err := vpd.Parse(s.store.PartitionData(p))
	if err != nil {
		s.log.Warn("vpd decode stopped early", "error", err)
	}

	resp := VPDResponse{ReportID: newReportID()}
	for _, sec := range sections {
		out := VPDSection{Ident: sec.Ident}
		for _, f := range sec.Fields {
			if f.Label == "" && !showAll {
				continue
			}
			out.Fields = append(out.Fields, VPDField{Key: f.Key, Label: f.Label, Value: f.Value})
		}
		resp.Sections = append(resp.Sections, out)
	}
	return writeJSON(c, http.StatusOK, resp)
}

func newReportID() string {
	return "rep_" + uuid.NewString()
}
