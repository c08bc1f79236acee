package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/achemlab/sgnssim/pkg/client"
)

func ExampleClient_StartRun() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	if err := c.StartRun(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("run started")
	// Output: run started
}

func ExampleClient_Status() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"running":false,"results":[{"run":0,"seed":1,"steps":10,"took":"1ms"}]}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	status, err := c.Status(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("running=%v replicates=%d\n", status.Running, len(status.Results))
	// Output: running=false replicates=1
}
