package api

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/converter/schemes"
	"github.com/james-see/stegomidi/pkg/corrupt"
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/workspace"
)

// maxUpload bounds multipart carrier uploads
const maxUpload = 8 << 20

// EncodeRequest is the body of an encode call
type EncodeRequest struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Scheme string `json:"scheme"`
	Save   bool   `json:"save"`
}

// SyncReport describes one sync marker check
type SyncReport struct {
	Step      int    `json:"step"`
	Note      string `json:"note"`
	Reported  string `json:"reported"`
	Actual    string `json:"actual"`
	Match     bool   `json:"match"`
	Malformed bool   `json:"malformed"`
	Phrase    bool   `json:"phrase"`
}

// DecodeResponse is the body returned by a decode call
type DecodeResponse struct {
	Text           string       `json:"text"`
	PayloadBytes   int          `json:"payload_bytes"`
	DeclaredLength uint32       `json:"declared_length"`
	Truncated      bool         `json:"truncated"`
	Bits           int          `json:"bits"`
	Skipped        int          `json:"skipped"`
	Syncs          []SyncReport `json:"syncs"`
	Mismatches     int          `json:"mismatches"`
	Artifact       string       `json:"artifact,omitempty"`
}

// NewDecodeResponse summarizes a decode result
func NewDecodeResponse(res *stego.Result) DecodeResponse {
	out := DecodeResponse{
		Text:           res.Text,
		PayloadBytes:   len(res.Payload),
		DeclaredLength: res.DeclaredLength,
		Truncated:      res.Truncated(),
		Bits:           res.Bits,
		Skipped:        len(res.Skipped()),
		Syncs:          []SyncReport{},
		Mismatches:     len(res.Mismatches()),
	}
	for _, c := range res.Syncs {
		r := SyncReport{
			Actual:    fmt.Sprintf("%02X", c.Actual),
			Match:     c.Match,
			Malformed: c.Malformed,
			Phrase:    c.Phrase,
		}
		if !c.Malformed {
			r.Step = c.Marker.Step
			r.Note = c.Marker.Symbol
			r.Reported = fmt.Sprintf("%02X", c.Marker.Checksum)
		}
		out.Syncs = append(out.Syncs, r)
	}
	return out
}

func (s *Server) newConverter(c *gin.Context, id string) (*converter.Converter, bool) {
	if strings.TrimSpace(id) == "" {
		id = s.scheme
	}
	scheme, err := schemes.Lookup(id, s.config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return converter.New(scheme), true
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	return data, filepath.Base(header.Filename), true
}

// handleEncode godoc
// @Summary Hide text in a MIDI file
// @Description Encodes UTF-8 text and returns the carrier MIDI file
// @Tags stego
// @Accept json
// @Produce audio/midi
// @Param request body EncodeRequest true "Text and title"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/encode [post]
func (s *Server) handleEncode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	conv, ok := s.newConverter(c, req.Scheme)
	if !ok {
		return
	}

	res, err := conv.EncodeText(req.Text, req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := workspace.ArtifactName(req.Title)
	if req.Save {
		path, err := s.ws.SaveArtifact(req.Title, res.Data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name = filepath.Base(path)
		c.Header("X-Artifact-Path", path)
	}

	s.log.Info("encoded", "request", c.GetString("request_id"), "bytes", len(req.Text), "events", res.Events, "markers", res.Markers)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Sync-Markers", strconv.Itoa(res.Markers))
	c.Data(http.StatusOK, "audio/midi", res.Data)
}

// handleDecode godoc
// @Summary Recover text from a MIDI file
// @Description Upload a carrier MIDI file and receive the hidden text with a sync report
// @Tags stego
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to decode"
// @Param scheme query string false "Scheme (default: adaptive)"
// @Param save query bool false "Also save the text under artifacts/"
// @Success 200 {object} DecodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/decode [post]
func (s *Server) handleDecode(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	conv, ok := s.newConverter(c, c.Query("scheme"))
	if !ok {
		return
	}

	res, err := conv.DecodeMIDI(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := NewDecodeResponse(res)
	if save, _ := strconv.ParseBool(c.Query("save")); save {
		path, err := s.ws.SaveDecoded(filename, res.Text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out.Artifact = path
	}

	s.log.Info("decoded", "request", c.GetString("request_id"), "file", filename, "syncs", len(out.Syncs), "mismatches", out.Mismatches)
	c.JSON(http.StatusOK, out)
}

// handleCorrupt godoc
// @Summary Corrupt a MIDI file
// @Description Shifts one random note-on up a semitone, for testing the sync checks
// @Tags stego
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "MIDI file to corrupt"
// @Param seed query int false "Random seed"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/corrupt [post]
func (s *Server) handleCorrupt(c *gin.Context) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	var rng *rand.Rand
	if v := c.Query("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seed"})
			return
		}
		rng = rand.New(rand.NewSource(seed))
	}

	out, change, err := corrupt.Bytes(converter.NewMIDIConverter(), data, rng)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.log.Info("corrupted", "request", c.GetString("request_id"), "file", filename, "change", change.String())

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", corrupt.OutputPrefix+filename))
	c.Header("X-Corrupted-Index", strconv.Itoa(change.Index))
	c.Header("X-Corrupted-Keys", fmt.Sprintf("%d->%d", change.From, change.To))
	c.Data(http.StatusOK, "audio/midi", out)
}

// listArtifacts godoc
// @Summary List saved carriers
// @Description Returns the MIDI files in the workspace mid/ folder
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]workspace.Entry
// @Router /api/v1/artifacts [get]
func (s *Server) listArtifacts(c *gin.Context) {
	entries, err := s.ws.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []workspace.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": entries})
}

// listSchemes godoc
// @Summary List encoding schemes
// @Description Returns the available steganographic schemes
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]schemes.Info
// @Router /api/v1/schemes [get]
func listSchemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schemes":     schemes.List(),
		"conversions": converter.GetSupportedConversions(),
	})
}

// showAlphabet godoc
// @Summary Show the note alphabet
// @Description Returns the notes, their MIDI keys and the duration classes
// @Tags info
// @Produce json
// @Param context query string false "Context note for the returned mapping (default: C4)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/alphabet [get]
func showAlphabet(c *gin.Context) {
	ctx := stego.DefaultNote
	if name := c.Query("context"); name != "" {
		n, ok := stego.ParseNote(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown note %q", name)})
			return
		}
		ctx = n
	}

	notes := []gin.H{}
	for _, n := range stego.Notes() {
		notes = append(notes, gin.H{"name": n.String(), "key": n.Key()})
	}
	durations := []gin.H{}
	for code := uint8(0); code < 1<<stego.DurationBits; code++ {
		durations = append(durations, gin.H{"code": code, "ticks": stego.DurationTicks(code)})
	}

	mapping := stego.MappingFor(ctx)
	slots := make([]string, len(mapping))
	for i, n := range mapping {
		slots[i] = n.String()
	}

	c.JSON(http.StatusOK, gin.H{
		"notes":     notes,
		"durations": durations,
		"context":   ctx.String(),
		"mapping":   slots,
	})
}
