package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func (h *Handlers) listClients(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.clients.GetAll())
}

func (h *Handlers) getClient(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	c, ok := h.clients.Get(idx)
	if !ok {
		writeAppError(w, model.NotFound("client not found"))
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handlers) getClientField(field func(model.Client) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := intParam(r, "idx")
		if err != nil {
			writeAppError(w, err)
			return
		}
		c, ok := h.clients.Get(idx)
		if !ok {
			writeAppError(w, model.NotFound("client not found"))
			return
		}
		writeData(w, http.StatusOK, field(c))
	}
}

func (h *Handlers) setClientVolume(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var volume int
	if jerr := json.NewDecoder(r.Body).Decode(&volume); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchClient(w, r, model.Command{Kind: model.CmdSetClientVolume, ClientIndex: idx, Volume: volume})
}

func (h *Handlers) setClientLatency(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var ms int
	if jerr := json.NewDecoder(r.Body).Decode(&ms); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchClient(w, r, model.Command{Kind: model.CmdSetClientLatency, ClientIndex: idx, Ms: ms})
}

func (h *Handlers) setClientZone(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var zoneIndex int
	if jerr := json.NewDecoder(r.Body).Decode(&zoneIndex); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchClient(w, r, model.Command{Kind: model.CmdAssignClientToZone, ClientIndex: idx, Index: zoneIndex})
}

func (h *Handlers) toggleClientMute(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.dispatchClient(w, r, model.Command{Kind: model.CmdToggleClientMute, ClientIndex: idx})
}

func (h *Handlers) dispatchClient(w http.ResponseWriter, r *http.Request, cmd model.Command) {
	cmd.Source = model.SourceAPI
	if aerr := h.dispatch.Dispatch(r.Context(), cmd); aerr != nil {
		writeAppError(w, aerr)
		return
	}
	c, _ := h.clients.Get(cmd.ClientIndex)
	writeData(w, http.StatusOK, c)
}
