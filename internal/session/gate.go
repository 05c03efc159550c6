// Package session holds client-side auth state and derives which part of the
// app a user may navigate to from it.
package session

// Region is a navigable set of screens.
type Region int

const (
	RegionOnboarding Region = iota
	RegionUserTypeSelection
	RegionMainApp
)

func (r Region) String() string {
	switch r {
	case RegionOnboarding:
		return "onboarding"
	case RegionUserTypeSelection:
		return "user-type-selection"
	case RegionMainApp:
		return "main-app"
	default:
		return "unknown"
	}
}

// Screen names a single screen in the navigation stack.
type Screen string

const (
	ScreenIntroduction      Screen = "Introduction"
	ScreenAuthSelection     Screen = "AuthSelection"
	ScreenSignUp            Screen = "SignUp"
	ScreenSignIn            Screen = "SignIn"
	ScreenUserTypeSelection Screen = "UserTypeSelection"
	ScreenMainApp           Screen = "MainApp"
)

// Route is what the navigation layer renders for a region.
type Route struct {
	Region  Region
	Screens []Screen // first entry is the initial screen
	// GestureBackEnabled is false where leaving the region by swiping back
	// must not be possible.
	GestureBackEnabled bool
}

// Initial returns the screen the region opens on.
func (r Route) Initial() Screen {
	return r.Screens[0]
}

// RegionFor maps the two auth flags onto a region.
func RegionFor(isAuthenticated, hasCompletedOnboarding bool) Region {
	switch {
	case !isAuthenticated:
		return RegionOnboarding
	case !hasCompletedOnboarding:
		return RegionUserTypeSelection
	default:
		return RegionMainApp
	}
}

// Gate returns the route for st. It reads only IsAuthenticated and
// HasCompletedOnboarding and has no side effects.
func Gate(st State) Route {
	switch RegionFor(st.IsAuthenticated, st.HasCompletedOnboarding) {
	case RegionUserTypeSelection:
		return Route{
			Region:             RegionUserTypeSelection,
			Screens:            []Screen{ScreenUserTypeSelection},
			GestureBackEnabled: false,
		}
	case RegionMainApp:
		return Route{
			Region:             RegionMainApp,
			Screens:            []Screen{ScreenMainApp},
			GestureBackEnabled: true,
		}
	default:
		return Route{
			Region:             RegionOnboarding,
			Screens:            []Screen{ScreenIntroduction, ScreenAuthSelection, ScreenSignUp, ScreenSignIn},
			GestureBackEnabled: true,
		}
	}
}
