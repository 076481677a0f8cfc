// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rest_test

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/memory"
)

// fakeServer serves a memory server over the repository's HTTP
// interface.
type fakeServer struct {
	backend *memory.Server

	mu       sync.Mutex
	requests []*http.Request
}

func newFakeServer(backend *memory.Server) *fakeServer {
	return &fakeServer{backend: backend}
}

func (f *fakeServer) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/SiteDirectory", f.getSiteDirectory).Methods(http.MethodGet)
	r.HandleFunc("/SiteDirectory/{site}", f.post).Methods(http.MethodPost)
	r.HandleFunc("/EngineeringModel/{model}/iteration/{iteration}", f.getIteration).Methods(http.MethodGet)
	r.HandleFunc("/EngineeringModel/{model}/iteration/{iteration}", f.post).Methods(http.MethodPost)
	return r
}

func (f *fakeServer) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeServer) login(w http.ResponseWriter, req *http.Request) (*memory.Session, bool) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	username, password, _ := req.BasicAuth()
	sess := f.backend.NewSession(session.Credentials{
		URI:      "fake",
		Username: username,
		Password: password,
	})
	if err := sess.Open(req.Context()); err != nil {
		if errors.IsUnauthorized(err) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return sess, true
}

func (f *fakeServer) getSiteDirectory(w http.ResponseWriter, req *http.Request) {
	sess, ok := f.login(w, req)
	if !ok {
		return
	}
	writeObjects(w, sess.Cache().Objects())
}

func (f *fakeServer) getIteration(w http.ResponseWriter, req *http.Request) {
	sess, ok := f.login(w, req)
	if !ok {
		return
	}
	model, iteration, err := iterationVars(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.Read(req.Context(), session.ReadRequest{Model: model, Iteration: iteration}); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	modelObj, _ := sess.Cache().Get(thing.Key{ID: model})
	iterationObj, _ := sess.Cache().Get(thing.Key{ID: iteration})
	writeObjects(w, append([]*thing.Object{modelObj}, thing.Subtree(sess.Cache(), iterationObj)...))
}

func (f *fakeServer) post(w http.ResponseWriter, req *http.Request) {
	sess, ok := f.login(w, req)
	if !ok {
		return
	}
	batch := session.Batch{}
	vars := mux.Vars(req)
	if _, ok := vars["site"]; ok {
		site, _ := uuid.Parse(vars["site"])
		batch.Context = session.SiteDirectoryContext(site)
	} else {
		model, iteration, err := iterationVars(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		batch.Context = session.IterationContext(model, iteration)
		if err := sess.Read(req.Context(), session.ReadRequest{Model: model, Iteration: iteration}); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	env, err := session.UnmarshalEnvelope(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := env.Created()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, d := range env.Delete {
		id, err := uuid.Parse(fmt.Sprint(d["iid"]))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		stored, ok := sess.Cache().Get(thing.Key{ID: id, Iteration: batch.Context.Iteration})
		if !ok {
			http.Error(w, "no such object "+id.String(), http.StatusNotFound)
			return
		}
		batch.Delete(stored)
	}
	for _, obj := range created {
		if obj.Kind != thing.Iteration {
			obj.Iteration = batch.Context.Iteration
		}
		batch.Operations = append(batch.Operations, session.Operation{Kind: session.Create, Modified: obj})
	}
	if err := sess.Write(req.Context(), batch); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	var changed []*thing.Object
	for _, obj := range created {
		stored, _ := sess.Cache().Get(obj.Key())
		changed = append(changed, stored)
		if parent, err := sess.Cache().Container(stored); err == nil {
			changed = append(changed, parent)
		}
	}
	writeObjects(w, changed)
}

func iterationVars(req *http.Request) (uuid.UUID, uuid.UUID, error) {
	vars := mux.Vars(req)
	model, err := uuid.Parse(vars["model"])
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.Trace(err)
	}
	iteration, err := uuid.Parse(vars["iteration"])
	return model, iteration, errors.Trace(err)
}

func writeObjects(w http.ResponseWriter, objs []*thing.Object) {
	data, err := thing.EncodeJSON(objs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
