package resolver

import "github.com/gnana997/m2ls/pkg/m2"

// knownEvents are events dispatched by the platform core.
var knownEvents = []string{
	"admin_system_config_changed_section",
	"adminhtml_block_html_before",
	"adminhtml_cache_flush_all",
	"adminhtml_cache_flush_system",
	"adminhtml_customer_save_after",
	"adminhtml_sales_order_create_process_data",
	"catalog_category_prepare_save",
	"catalog_category_save_after",
	"catalog_controller_category_init_after",
	"catalog_controller_product_init_after",
	"catalog_controller_product_view",
	"catalog_product_collection_load_after",
	"catalog_product_delete_after",
	"catalog_product_get_final_price",
	"catalog_product_is_salable_after",
	"catalog_product_load_after",
	"catalog_product_save_after",
	"catalog_product_save_before",
	"checkout_cart_add_product_complete",
	"checkout_cart_product_add_after",
	"checkout_cart_save_after",
	"checkout_cart_update_items_after",
	"checkout_onepage_controller_success_action",
	"checkout_submit_all_after",
	"cms_page_render",
	"cms_page_save_after",
	"controller_action_postdispatch",
	"controller_action_predispatch",
	"controller_front_send_response_before",
	"customer_address_save_after",
	"customer_customer_authenticated",
	"customer_login",
	"customer_logout",
	"customer_register_success",
	"customer_save_after_data_object",
	"layout_generate_blocks_after",
	"layout_load_before",
	"layout_render_before",
	"model_delete_after",
	"model_save_after",
	"model_save_before",
	"newsletter_subscriber_save_after",
	"payment_method_assign_data",
	"payment_method_is_active",
	"review_save_after",
	"sales_model_service_quote_submit_before",
	"sales_model_service_quote_submit_success",
	"sales_order_invoice_pay",
	"sales_order_invoice_register",
	"sales_order_payment_cancel",
	"sales_order_place_after",
	"sales_order_place_before",
	"sales_order_save_after",
	"sales_order_save_before",
	"sales_order_shipment_save_after",
	"sales_quote_add_item",
	"sales_quote_collect_totals_after",
	"sales_quote_collect_totals_before",
	"sales_quote_item_set_product",
	"sales_quote_product_add_after",
	"sales_quote_remove_item",
	"sales_quote_save_after",
	"view_block_abstract_to_html_after",
	"view_block_abstract_to_html_before",
}

func eventCandidates(rng m2.Range) []m2.Candidate {
	out := make([]m2.Candidate, 0, len(knownEvents))
	for _, e := range knownEvents {
		out = append(out, candidate(e, m2.CandidateEvent, e, rng))
	}
	return out
}
