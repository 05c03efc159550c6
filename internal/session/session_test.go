package session

import (
	"runtime"
	"sync"
	"testing"

	"github.com/iMallco/iMall/internal/model"
)

func userWithType(t model.UserType) model.UserResponse {
	u := model.UserResponse{ID: "u1", Name: "Jo", Email: "jo@example.com"}
	if t != "" {
		u.UserType = &t
	}
	return u
}

func TestSessionLifecycle(t *testing.T) {
	s := New()
	var routes []Region
	s.Subscribe(func(r Route) { routes = append(routes, r.Region) })

	if s.Route().Region != RegionOnboarding {
		t.Fatalf("new session region = %v", s.Route().Region)
	}

	if !s.Authenticate(s.Begin(), userWithType(""), "tok") {
		t.Fatal("Authenticate() rejected a current ticket")
	}
	if s.Route().Region != RegionUserTypeSelection {
		t.Fatalf("after sign-up region = %v", s.Route().Region)
	}

	if !s.CompleteOnboarding(s.Begin(), userWithType(model.UserTypeCustomer)) {
		t.Fatal("CompleteOnboarding() rejected a current ticket")
	}
	if s.Route().Region != RegionMainApp {
		t.Fatalf("after onboarding region = %v", s.Route().Region)
	}

	s.SignOut()
	st := s.State()
	if st.IsAuthenticated || st.HasCompletedOnboarding || st.User != nil || st.Token != "" {
		t.Fatalf("SignOut() left state %+v", st)
	}

	want := []Region{RegionUserTypeSelection, RegionMainApp, RegionOnboarding}
	if len(routes) != len(want) {
		t.Fatalf("subscriber saw %v, want %v", routes, want)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Errorf("route[%d] = %v, want %v", i, routes[i], want[i])
		}
	}
}

func TestSignInOnboardedUserSkipsSelection(t *testing.T) {
	s := New()
	s.Authenticate(s.Begin(), userWithType(model.UserTypeVendor), "tok")

	if s.Route().Region != RegionMainApp {
		t.Fatalf("region = %v, want main app", s.Route().Region)
	}
}

func TestOnboardingIsOneWay(t *testing.T) {
	s := New()
	s.Authenticate(s.Begin(), userWithType(""), "tok")
	s.CompleteOnboarding(s.Begin(), userWithType(model.UserTypeCustomer))

	// Same user re-authenticates with a stale unset type: still onboarded.
	s.Authenticate(s.Begin(), userWithType(""), "tok2")
	if !s.State().HasCompletedOnboarding {
		t.Fatal("session reverted to pending onboarding")
	}

	s.CompleteOnboarding(s.Begin(), userWithType(model.UserTypeAdmin))
	st := s.State()
	if !st.HasCompletedOnboarding || *st.User.UserType != model.UserTypeAdmin {
		t.Fatalf("state = %+v", st)
	}
}

func TestStaleTicketDiscarded(t *testing.T) {
	s := New()
	ticket := s.Begin()

	// User signs out while the sign-in request is still in flight.
	s.SignOut()

	if s.Authenticate(ticket, userWithType(""), "tok") {
		t.Fatal("Authenticate() accepted a stale ticket")
	}
	if s.State().IsAuthenticated {
		t.Fatal("stale result changed the session")
	}
}

func TestCompleteOnboardingRequiresAuthentication(t *testing.T) {
	s := New()
	if s.CompleteOnboarding(s.Begin(), userWithType(model.UserTypeVendor)) {
		t.Fatal("CompleteOnboarding() succeeded on a signed-out session")
	}
	if s.Route().Region != RegionOnboarding {
		t.Fatalf("region = %v", s.Route().Region)
	}
}

func TestStateReturnsCopy(t *testing.T) {
	s := New()
	s.Authenticate(s.Begin(), userWithType(""), "tok")

	st := s.State()
	st.User.Name = "Mallory"

	if s.State().User.Name != "Jo" {
		t.Fatal("State() exposed internal user pointer")
	}
}

func TestSignOutDuringDeliveryEndsOnCurrentRoute(t *testing.T) {
	s := New()

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		last Region
		once sync.Once
	)
	s.Subscribe(func(r Route) {
		mu.Lock()
		last = r.Region
		mu.Unlock()
		if r.Region == RegionUserTypeSelection {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Authenticate(s.Begin(), userWithType(""), "tok")
	}()

	<-entered
	go func() {
		defer wg.Done()
		s.SignOut()
	}()
	for s.State().IsAuthenticated {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if want := s.Route().Region; last != want {
		t.Errorf("last notified region = %v, session region = %v", last, want)
	}
	if last != RegionOnboarding {
		t.Errorf("last notified region = %v, want onboarding", last)
	}
}
