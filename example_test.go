package rabbithole_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/macros/slider"
)

// Example_slider renders a slider, clicks its label and shows the persisted
// state and the patched markup.
func Example_slider() {
	wiki, err := rabbithole.New()
	if err != nil {
		log.Fatal(err)
	}

	wiki.Store.Put(rabbithole.NewRecord("Home", rabbithole.Fields{
		"text": `<<slider "$:/state/home" label:Greeting content:Hello>>`,
	}))

	doc, err := wiki.Render("Home")
	if err != nil {
		log.Fatal(err)
	}
	defer doc.Close()

	labels := doc.FindByRole(slider.RoleToggle)
	doc.Click(labels[0])

	state, _ := wiki.Store.Get("$:/state/home")
	fmt.Println(state.Text())

	out, err := doc.HTML()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
	// Output:
	// open
	// <p><span class="tw-slider" data-tw-slider-type="$:/state/home"><a class="btn btn-info" data-rh-role="slider-toggle">Greeting</a><div class="tw-slider-body" style="display:block"><p>Hello</p></div></span></p>
}

// Example_sharedState shows two sliders bound to the same state record
// converging after one of them is toggled.
func Example_sharedState() {
	wiki, err := rabbithole.New()
	if err != nil {
		log.Fatal(err)
	}

	wiki.Store.Put(rabbithole.NewRecord("Home", rabbithole.Fields{
		"text": "<<slider S one content:A>>\n\n<<slider S two content:B>>",
	}))

	doc, err := wiki.Render("Home")
	if err != nil {
		log.Fatal(err)
	}
	defer doc.Close()

	doc.Click(doc.FindByRole(slider.RoleToggle)[1])

	out, err := doc.HTML()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(strings.Count(out, "display:block"))
	// Output:
	// 2
}
