// Package callback encodes and decodes inline keyboard callback data.
//
// Data is a list of segments joined by Delimiter. The first segment is the
// namespace: nav, conf, act or page.
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"contentbot/internal/domain"
)

const (
	Delimiter = "_"

	// MaxDataLen is the Telegram limit for callback data in bytes
	MaxDataLen = 64

	NamespaceNav  = "nav"
	NamespaceConf = "conf"
	NamespaceAct  = "act"
	NamespacePage = "page"

	ConfirmType = "confirm"
	CancelType  = "cancel"
)

// Navigation targets understood by the nav namespace
const (
	TargetMain      = "main"
	TargetBack      = "back"
	TargetContent   = "content"
	TargetAnalytics = "analytics"
	TargetSystem    = "system"
	TargetHelp      = "help"
)

var navTargets = map[string]struct{}{
	TargetMain:      {},
	TargetBack:      {},
	TargetContent:   {},
	TargetAnalytics: {},
	TargetSystem:    {},
	TargetHelp:      {},
}

// Intent is the decoded meaning of a callback
type Intent interface {
	Namespace() string
	String() string
}

// Navigate moves between menus. Either Target is set, or Category and Action are.
type Navigate struct {
	Target   string
	Category string
	Action   string
}

// Confirm answers a confirmation menu
type Confirm struct {
	Category    string
	Action      string
	ConfirmType string
	Extra       string
}

// Act runs a non-destructive action immediately
type Act struct {
	Category string
	Action   string
}

// Paginate shows another page of a rendered list; pages are 1-based
type Paginate struct {
	Context string
	Page    int
}

func (Navigate) Namespace() string { return NamespaceNav }
func (Confirm) Namespace() string  { return NamespaceConf }
func (Act) Namespace() string      { return NamespaceAct }
func (Paginate) Namespace() string { return NamespacePage }

// IsCategoryAction reports whether the navigation targets a category action
func (n Navigate) IsCategoryAction() bool {
	return n.Target == ""
}

// Confirmed reports whether the user pressed Confirm
func (c Confirm) Confirmed() bool {
	return c.ConfirmType == ConfirmType
}

func (n Navigate) String() string {
	if n.IsCategoryAction() {
		return join(NamespaceNav, n.Category, n.Action)
	}
	return join(NamespaceNav, n.Target)
}

func (c Confirm) String() string {
	return join(NamespaceConf, c.Category, c.Action, c.ConfirmType, c.Extra)
}

func (a Act) String() string {
	return join(NamespaceAct, a.Category, a.Action)
}

func (p Paginate) String() string {
	return join(NamespacePage, p.Context, strconv.Itoa(p.Page))
}

// Parse decodes callback data into an Intent
func Parse(data string) (Intent, error) {
	data = strings.TrimSpace(data)
	parts := strings.Split(data, Delimiter)
	if len(parts) < 2 || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
	}

	ns, args := parts[0], parts[1:]
	switch ns {
	case NamespaceNav:
		if len(args) == 1 {
			if _, ok := navTargets[args[0]]; ok {
				return Navigate{Target: args[0]}, nil
			}
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
		}
		return Navigate{Category: args[0], Action: strings.Join(args[1:], Delimiter)}, nil

	case NamespaceConf:
		if len(args) < 3 {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
		}
		return Confirm{
			Category:    args[0],
			Action:      args[1],
			ConfirmType: args[2],
			Extra:       strings.Join(args[3:], Delimiter),
		}, nil

	case NamespaceAct:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
		}
		return Act{Category: args[0], Action: args[1]}, nil

	case NamespacePage:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCallback, data)
		}
		page, err := strconv.Atoi(args[1])
		if err != nil || page < 1 {
			return nil, fmt.Errorf("%w: bad page in %q", domain.ErrUnknownCallback, data)
		}
		return Paginate{Context: args[0], Page: page}, nil
	}

	return nil, fmt.Errorf("%w: namespace %q", domain.ErrUnknownCallback, ns)
}

// Nav builds nav_{target}
func Nav(target string) string {
	return Navigate{Target: target}.String()
}

// NavAction builds nav_{category}_{action}
func NavAction(category, action string) string {
	return Navigate{Category: category, Action: action}.String()
}

// ActData builds act_{category}_{action}
func ActData(category, action string) string {
	return Act{Category: category, Action: action}.String()
}

// ConfirmData builds conf_{category}_{action}_confirm[_{extra}]
func ConfirmData(category, action, extra string) string {
	return Confirm{Category: category, Action: action, ConfirmType: ConfirmType, Extra: extra}.String()
}

// PageData builds page_{context}_{n}
func PageData(context string, page int) string {
	return Paginate{Context: context, Page: page}.String()
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, Delimiter)
}
